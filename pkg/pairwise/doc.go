// Package pairwise turns a dataset into dense integer form and evaluates the
// pairwise costs every consensus algorithm is built on.
//
// [NewIndex] assigns element ids in first-seen order and builds the position
// matrix (element x ranking -> bucket index or [Absent]). [Evaluate] then
// computes, for every pair of elements, the total penalty of placing the pair
// before, after or tied in the consensus. The cost of any complete consensus
// ranking is a sum of entries of that [Table]; see [Table.Score].
package pairwise
