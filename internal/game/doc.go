// Package game implements the core auction game logic.
//
// The main type is Game, which manages a single table from lobby to finish:
// turn order, card reveals, the five auction variants (including the two-card
// double auction and its offer/decline protocol), round-end ranking and
// payouts, and the money ledger.
//
// # Basic Usage
//
// Create a game, seat players, and start:
//
//	g := game.NewGame("A1B2C3D4", rng, logger)
//	g.AddPlayer("p1", "Alice")
//	g.AddPlayer("p2", "Bob")
//	g.AddPlayer("p3", "Carol")
//	events, err := g.Start()
//
// Every state transition returns the events it produced; callers publish them
// after the transition has committed. A transition either fully applies or
// fails validation and leaves the game unchanged.
//
// # Deterministic Testing
//
// All randomness (deck shuffle, seat randomization) flows through the
// injected *rand.Rand, so a fixed seed reproduces a full game:
//
//	rng := randutil.New(42)
//	g := game.NewGame("A1B2C3D4", rng, logger)
//
// # Architecture
//
// Game delegates to specialized pieces:
//   - Deck: the fixed 70-card multiset, shuffle and deal tables
//   - Ledger: append-only record of every money movement
//   - Phase: explicit waiting state (idle, pending auction, pending double)
//
// Access to a Game is serialized internally; transitions never block on I/O.
package game
