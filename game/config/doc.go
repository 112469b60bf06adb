// Package config manages the puzzle definitions stored in the config directory.
//
// The config package handles:
//   - Loading puzzle configurations from JSON or YAML files
//   - Validation through engine.ValidatePuzzleConfig
//   - Default configuration selection
//   - Configuration discovery, listing, and saving
//
// Configuration Format:
//
// Each file holds one PuzzleConfig. The file name without its extension is
// the config ID used to create sessions. Tiles configs set a row-major board;
// pitchers configs set goal, capacities, and contents:
//
//	name: Four from 5 and 3
//	kind: pitchers
//	goal: 4
//	capacities: [5, 3]
//	contents: [0, 0]
//	strategy: bfs
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	puzzle, err := manager.LoadConfig("eight-puzzle")
//	id, fallback := manager.GetDefault()
//	infos, err := manager.ListConfigs()
package config
