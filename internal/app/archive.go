package app

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"me_msggen/internal/domain"
)

// Query runs one archive operation and writes its report to w.
func (b *Bootstrap) Query(w io.Writer, q Query) error {
	if b.Archive == nil {
		return fmt.Errorf("%w: set storage.enabled", domain.ErrArchiveDisabled)
	}

	switch {
	case q.ListRuns:
		return b.listRuns(w)
	case q.ShowRun != "":
		return b.showRun(w, q.ShowRun)
	case q.FindID != "":
		return b.findClOrdID(w, q.FindID)
	case q.DeleteRun != "":
		return b.deleteRun(w, q.DeleteRun)
	}
	return errUsage
}

func (b *Bootstrap) listRuns(w io.Writer) error {
	runs, err := b.Archive.ListRuns()
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\ttest=%d\tseeded=%d\topen_keys=%d\t%s %s %s\n",
			r.ID, r.CreatedAt.Format(time.RFC3339), r.TestCount, r.SeededCount, r.OpenKeys,
			r.StockFile, r.EventFile, r.ModelSeqFile)
	}
	return nil
}

func (b *Bootstrap) lookupRun(id string) (*domain.RunRecord, error) {
	run, err := b.Archive.GetRun(id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrRunNotFound, id)
	}
	return run, nil
}

// showRun prints both streams of a run, each under a "# stream" header
func (b *Bootstrap) showRun(w io.Writer, id string) error {
	run, err := b.lookupRun(id)
	if err != nil {
		return err
	}
	for _, stream := range []string{domain.StreamTest, domain.StreamSeeded} {
		msgs, err := b.Archive.Messages(run.ID, stream)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "# %s %d\n", stream, len(msgs))
		for _, m := range msgs {
			fmt.Fprintln(w, m.Record())
		}
	}
	return nil
}

func (b *Bootstrap) findClOrdID(w io.Writer, clordid string) error {
	msgs, err := b.Archive.FindByClOrdID(clordid)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", m.RunID, m.Stream, m.Ordinal, m.Record())
	}
	return nil
}

func (b *Bootstrap) deleteRun(w io.Writer, id string) error {
	if _, err := b.lookupRun(id); err != nil {
		return err
	}
	if err := b.Archive.DeleteRun(id); err != nil {
		return err
	}
	slog.Info("Run deleted", slog.String("run_id", id))
	fmt.Fprintf(w, "deleted %s\n", id)
	return nil
}
