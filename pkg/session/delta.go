package session

import "github.com/jp-knj/jetmd/pkg/ast"

// NodeShift records a retained node relocated by an edit.
type NodeShift struct {
	NodeID     int `json:"nodeId"`
	DeltaBytes int `json:"deltaBytes"`
}

// Delta describes how one Edit call changed the tree: which nodes were
// removed, which sub-trees were inserted, and which retained top-level
// blocks shifted position.
type Delta struct {
	Removed  []int       `json:"removed"`
	Inserted []*ast.Node `json:"inserted"`
	Shifted  []NodeShift `json:"shifted"`

	// ReuseRatio is reused nodes over total nodes after the edit.
	ReuseRatio float64 `json:"reuseRatio"`
}
