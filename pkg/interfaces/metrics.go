package interfaces

// Metrics is the collector contract services report against. Implementations
// are constructed once at process start and injected; there is no ambient
// global collector.
type Metrics interface {
	DeploymentSubmitted()
	DeploymentSucceeded()
	DeploymentFailed()
	NotificationReceived(level string)
}
