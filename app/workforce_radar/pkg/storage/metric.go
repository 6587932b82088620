package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/model"
)

// ErrMalformedMetric 持久化的指标无法解码或未通过校验
var ErrMalformedMetric = errors.New("malformed workforce metric")

// validate 只读使用，validator 实例缓存结构体元数据且并发安全
var validate = validator.New()

// DecodeSnapshot 解码并校验持久化的指标。空值与 JSON null 表示暂无信号，返回 nil 且无错误。
func DecodeSnapshot(data []byte) (*model.WorkforceImpactSnapshot, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var snap model.WorkforceImpactSnapshot
	if err := json.Unmarshal(trimmed, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMetric, err)
	}
	if err := validate.Struct(&snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMetric, err)
	}
	return &snap, nil
}

// DecodeReport 解码运行中保存的报告，空值返回 nil
func (r *Run) DecodeReport() (*model.OrgReport, error) {
	trimmed := bytes.TrimSpace(r.Report)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var report model.OrgReport
	if err := json.Unmarshal(trimmed, &report); err != nil {
		return nil, fmt.Errorf("decode report of run %d: %w", r.ID, err)
	}
	return &report, nil
}
