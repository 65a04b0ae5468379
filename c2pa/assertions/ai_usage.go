package assertions

import (
	"encoding/json"
	"fmt"
)

// Labels of the AI and data mining usage assertions.
const (
	LabelAITraining           = "c2pa.ai_training"
	LabelAIGenerativeTraining = "c2pa.ai_generative_training"
	LabelDataMining           = "c2pa.data_mining"
	LabelInference            = "c2pa.inference"
)

// Use is the permission of an AIDataMiningUsage.
type Use string

const (
	UseAllowed     Use = "allowed"
	UseNotAllowed  Use = "notAllowed"
	UseConstrained Use = "constrained"
)

// AIDataMiningUsage states whether content may be used for one kind of
// machine learning or mining. ConstraintInfo is only meaningful with
// UseConstrained.
type AIDataMiningUsage struct {
	Use            Use    `json:"use"`
	ConstraintInfo string `json:"constraintInfo,omitempty"`
}

var (
	Allowed    = AIDataMiningUsage{Use: UseAllowed}
	NotAllowed = AIDataMiningUsage{Use: UseNotAllowed}
)

// Constrained allows usage under the conditions described by info.
func Constrained(info string) AIDataMiningUsage {
	return AIDataMiningUsage{Use: UseConstrained, ConstraintInfo: info}
}

// MarshalJSON drops constraintInfo unless the usage is constrained.
func (u AIDataMiningUsage) MarshalJSON() ([]byte, error) {
	type plain AIDataMiningUsage
	if u.Use != UseConstrained {
		u.ConstraintInfo = ""
	}
	return json.Marshal(plain(u))
}

func (u AIDataMiningUsage) validate() error {
	switch u.Use {
	case UseAllowed, UseNotAllowed, UseConstrained:
		return nil
	default:
		return fmt.Errorf("unknown AI usage %q", u.Use)
	}
}

// CustomAITrainingOptions sets each of the four usages independently.
type CustomAITrainingOptions struct {
	AITraining           AIDataMiningUsage
	AIGenerativeTraining AIDataMiningUsage
	DataMining           AIDataMiningUsage
	Inference            AIDataMiningUsage
}

// UniformAITrainingOptions applies usage to all four labels.
func UniformAITrainingOptions(usage AIDataMiningUsage) CustomAITrainingOptions {
	return CustomAITrainingOptions{
		AITraining:           usage,
		AIGenerativeTraining: usage,
		DataMining:           usage,
		Inference:            usage,
	}
}

// Assertions encodes the four usage assertions in label order
// ai_training, ai_generative_training, data_mining, inference.
func (o CustomAITrainingOptions) Assertions() ([]*Assertion, error) {
	entries := []struct {
		label string
		usage AIDataMiningUsage
	}{
		{LabelAITraining, o.AITraining},
		{LabelAIGenerativeTraining, o.AIGenerativeTraining},
		{LabelDataMining, o.DataMining},
		{LabelInference, o.Inference},
	}
	out := make([]*Assertion, 0, len(entries))
	for _, e := range entries {
		if err := e.usage.validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", e.label, err)
		}
		a, err := EncodeJSON(e.label, e.usage)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
