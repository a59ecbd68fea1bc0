/*
Package session serializes access to one editing engine.

The engine is not safe for concurrent use, yet pointer input and
network-delivered snapshot replacements arrive from different goroutines.
A Session runs a single loop goroutine that owns the engine; every public
method enqueues a closure onto that loop and waits for its result. No
locking happens inside the engine itself.
*/
package session
