package usecase

// Recorder receives domain events for metrics. Implementations must be safe
// for concurrent use.
type Recorder interface {
	CommitteeCreated()
	PaymentToggled(paid bool)
	DrawRecorded(completed bool)
	ReminderGenerated(fallback bool)
}

type nopRecorder struct{}

func (nopRecorder) CommitteeCreated()      {}
func (nopRecorder) PaymentToggled(bool)    {}
func (nopRecorder) DrawRecorded(bool)      {}
func (nopRecorder) ReminderGenerated(bool) {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
