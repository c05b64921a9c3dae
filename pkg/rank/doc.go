// Package rank defines the data model shared by every consensus algorithm:
// elements, buckets, rankings, datasets, scoring schemes and consensus results.
//
// # Rankings with ties
//
// A [Ranking] is an ordered sequence of buckets. Elements in the same bucket
// are tied; bucket i precedes bucket i+1. A ranking may omit elements that
// appear in other rankings of the same [Dataset] (incomplete ranking).
//
//	r := rank.Ranking{{"a", "b"}, {"c"}} // a and b tied, both before c
//
// # Scoring schemes
//
// A [ScoringScheme] holds two penalty vectors of length 6 indexed by the
// relation an input ranking shows for an ordered pair (x, y):
//
//	0: x before y   1: x after y   2: x tied with y
//	3: y absent     4: x absent    5: both absent
//
// Before applies when the consensus places x strictly before y, Tied when the
// consensus ties them. The after vector is derived by [ScoringScheme.After].
//
// # Formats
//
// [ReadText] and [WriteText] use one ranking per line in bracket notation
// ("[[a, b], [c]]"). [ReadJSON] and [WriteJSON] use
// {"name": "...", "rankings": [[["a", "b"], ["c"]]]}.
package rank
