package taskmix

import (
	"math"
	"sort"
)

// Bucket 任务归类
type Bucket string

const (
	BucketAutomation   Bucket = "automation"
	BucketAugmentation Bucket = "augmentation"
	BucketManual       Bucket = "manual"
)

// TieBreak 自动化与增强得分相等且为正时归入的桶。
// 下游的暴露度与排行都依赖这条规则，修改前需和数据方确认口径。
const TieBreak = BucketAutomation

// DefaultTaskTotal 只有占比时合成整数任务数所用的总数
const DefaultTaskTotal = 100

// ClassifyTask 按两个得分把一项任务归到自动化、增强或人工
func ClassifyTask(automation, augmentation float64) Bucket {
	switch {
	case automation == augmentation && automation > 0:
		return TieBreak
	case automation > augmentation && automation > 0:
		return BucketAutomation
	case augmentation > automation && augmentation > 0:
		return BucketAugmentation
	default:
		return BucketManual
	}
}

// LargestRemainder 将占比按最大余数法分配为整数，结果非负且总和恰为 total。
// 占比先按其总和缩放；总和为 0 时全部计入最后一个桶。余数相同的按下标靠前者优先。
func LargestRemainder(shares []float64, total int) []int {
	out := make([]int, len(shares))
	if len(shares) == 0 || total <= 0 {
		return out
	}

	sum := 0.0
	for _, s := range shares {
		if validShare(s) {
			sum += s
		}
	}
	if sum == 0 {
		out[len(out)-1] = total
		return out
	}

	type remainder struct {
		idx  int
		frac float64
	}
	eligible := make([]remainder, 0, len(shares))
	assigned := 0
	for i, s := range shares {
		if !validShare(s) {
			continue
		}
		quota := s / sum * float64(total)
		floor := math.Floor(quota)
		out[i] = int(floor)
		assigned += out[i]
		eligible = append(eligible, remainder{idx: i, frac: quota - floor})
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].frac != eligible[j].frac {
			return eligible[i].frac > eligible[j].frac
		}
		return eligible[i].idx < eligible[j].idx
	})
	for k := 0; assigned < total; k++ {
		out[eligible[k%len(eligible)].idx]++
		assigned++
	}
	return out
}

func validShare(s float64) bool {
	return s > 0 && !math.IsInf(s, 0) && !math.IsNaN(s)
}
