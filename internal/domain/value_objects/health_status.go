package valueobjects

// HealthStatus is the liveness value reported by /healthz.
type HealthStatus string

const (
	HealthStatusOK HealthStatus = "ok"
)

// NewHealthyStatus is the only status the process reports while it can serve
// requests; an unhealthy process stops answering.
func NewHealthyStatus() HealthStatus {
	return HealthStatusOK
}

func (h HealthStatus) String() string {
	return string(h)
}
