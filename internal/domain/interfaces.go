package domain

// RecordWriter is an output port for formatted messages
type RecordWriter interface {
	Write(msg *Message) error
	Close() error
}

// RunArchive persists finished runs and reads them back
type RunArchive interface {
	SaveRun(run *RunRecord, test, seeded []*Message) error
	GetRun(id string) (*RunRecord, error)
	ListRuns() ([]RunRecord, error)
	Messages(runID, stream string) ([]ArchivedMessage, error)
	FindByClOrdID(clordid string) ([]ArchivedMessage, error)
	DeleteRun(id string) error
	Close() error
}
