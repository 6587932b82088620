package model

import "fmt"

// IssueKind 数据质量问题分类，均为非致命
type IssueKind string

const (
	// IssueMissingSignal 某个单元没有可用的指标或岗位数据
	IssueMissingSignal IssueKind = "missing_signal"
	// IssueUnresolvedReference 岗位或父节点引用找不到
	IssueUnresolvedReference IssueKind = "unresolved_reference"
	// IssueMalformedMetric 持久化的指标未通过校验
	IssueMalformedMetric IssueKind = "malformed_metric"
)

// Issue 计算过程中被跳过或降级处理的条目
type Issue struct {
	Kind   IssueKind `json:"kind"`
	Ref    string    `json:"ref"`
	NodeID string    `json:"nodeId,omitempty"`
	Reason string    `json:"reason"`
}

func (i Issue) String() string {
	if i.NodeID != "" {
		return fmt.Sprintf("%s: %s (node %s): %s", i.Kind, i.Ref, i.NodeID, i.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", i.Kind, i.Ref, i.Reason)
}
