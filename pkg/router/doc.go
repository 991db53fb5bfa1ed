// Package router implements the Metamon route table.
//
// The route table maps route patterns to application-defined targets and
// resolves concrete URLs against them:
//   - Literal patterns ("/about") match by exact string comparison.
//   - Dynamic patterns ("/user/[id]") capture one path segment per
//     parameter.
//   - Conflicting registrations are rejected up front, so resolution
//     never has to break ties at request time.
//
// # Registration
//
// Routes are registered one at a time and validated eagerly:
//
//	table := router.NewTable()
//	err := table.Register("/user/[id]", router.RouteDefinition{
//	    Target: UserPage,
//	})
//
// Registering the same pattern twice fails with ErrExactRouteConflict.
// Registering a dynamic pattern that is ambiguous with an existing one
// fails with ErrDynamicRouteConflict: two dynamic patterns are ambiguous
// when they have the same number of segments and no position where both
// hold different literals.
//
// # Resolution
//
//	match, ok := table.Resolve("/user/42?tab=posts")
//	if ok {
//	    // match.Config.Pattern == "/user/[id]"
//	    // match.Params["id"] == "42"
//	    // match.Query["tab"] == "posts"
//	}
//
// Literal matches always win over dynamic ones. Dynamic patterns are tried
// in registration order and the first match is used.
//
// The table is safe for concurrent use.
package router
