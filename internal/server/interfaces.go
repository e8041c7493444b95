package server

// Server is the lifecycle contract of a transport server owned by this
// package. RunServer blocks until the listener stops; Shutdown drains
// in-flight work and releases resources.
type Server interface {
	RunServer()
	Shutdown()
}
