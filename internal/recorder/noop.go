package recorder

// NoopRecorder is a no-op implementation used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCrossover(_ *CrossoverEvent) error { return nil }
func (n *NoopRecorder) RecordAlert(_ *AlertRecord) error         { return nil }
func (n *NoopRecorder) RecentAlerts(_ string, _ int) ([]AlertRecord, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
