// Package service provides the business logic layer of the puzzle server.
//
// The service package implements:
//   - Multi-session puzzle management
//   - Human moves, bulk moves, and resets
//   - Solving from the current position with any search strategy
//   - Replaying a solver plan into the session one action at a time
//   - Paginated move history
//   - Configuration listing, loading, and saving
//
// Core Interfaces:
//
// GameService is the main service interface used by the REST API and, through
// it, by the MCP tool server. SessionManager and ConfigManager are the storage
// dependencies, implemented by the session and config packages.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "four-from-5-3")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Solve(ctx, info.ID, service.SolveOptions{Strategy: "bfs", Apply: true})
//
// Concurrency:
//
// Engines are not safe for concurrent use. The service serializes every
// operation that touches an engine.
package service
