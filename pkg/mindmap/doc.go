// Package mindmap defines the hierarchical mind-map tree rendered by Mindscape.
// A Map is an immutable value per render cycle: the viewer holds one tree
// reference and tracks which nodes are open in a separate ExpansionSet.
package mindmap
