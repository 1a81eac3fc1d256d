// Package engine contains the simulation loop and game logic.
// This is the heartbeat of "Inbox Overload".
//
// ARCHITECTURAL RULE: every mutation of session state happens behind the
// Session mutex, either from a player command or from a scheduler callback.
// Timer callbacks are epoch-guarded: once a session ends or restarts, stale
// callbacks observe the epoch mismatch and bail before touching anything.
package engine
