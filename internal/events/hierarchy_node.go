package events

import "time"

const HierarchyLifecycleTopic = "mes.hierarchy.lifecycle.v1"

const (
	HierarchyNodeCreated     = "hierarchy_node.created"
	HierarchyNodeRenamed     = "hierarchy_node.renamed"
	HierarchyNodeReparented  = "hierarchy_node.reparented"
	HierarchyNodeSoftDeleted = "hierarchy_node.soft_deleted"
)

type HierarchyNodeEvent struct {
	EventType  string    `json:"event_type"`
	Level      string    `json:"level"`
	NodeID     string    `json:"node_id"`
	Name       string    `json:"name,omitempty"`
	ParentID   string    `json:"parent_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
