// Package async provides a minimal Future abstraction for running independent
// I/O concurrently and joining the results.
//
// It exists so callers can fan out a handful of fetches (e.g. loading the plan
// catalog and the gateway list at checkout entry) without hand-rolled channel
// plumbing at every call site:
//
//	plans := async.Run(ctx, source.ListPlans)
//	gateways := async.Run(ctx, source.ListEnabledGateways)
//
//	p, err1 := plans.Await()
//	g, err2 := gateways.Await()
//
// AwaitWithTimeout allows tests to verify pending-state invariants against a
// deliberately slow collaborator.
package async
