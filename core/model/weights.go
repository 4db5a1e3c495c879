package model

import (
	"encoding/json"

	"github.com/YuminosukeSato/adaboost/pkg/errors"
)

// WeightsFormatVersion は EnsembleWeights のフォーマットバージョン
const WeightsFormatVersion = "1.0"

// StumpWeights は決定株1本分のパラメータ
type StumpWeights struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Polarity  float64 `json:"polarity"`
}

// EnsembleWeights はブースティングアンサンブルの学習済み状態（シリアライゼーション用）
type EnsembleWeights struct {
	// ModelType はモデルの種類（AdaBoostClassifier）
	ModelType string `json:"model_type"`

	// Version はフォーマットのバージョン（互換性チェック用）
	Version string `json:"version"`

	// NEstimators は設定されたアンサンブルサイズ
	NEstimators int `json:"n_estimators"`

	// NFeatures は学習時の特徴量数
	NFeatures int `json:"n_features"`

	// Alphas は各メンバーの信頼度 α（ラウンド順）
	Alphas []float64 `json:"alphas"`

	// ErrorRates は各ラウンドの重み付き誤差率
	ErrorRates []float64 `json:"error_rates,omitempty"`

	// Stumps は各メンバーの弱学習器（ラウンド順）
	Stumps []StumpWeights `json:"stumps"`

	// Features は特徴量の名前（オプション）
	Features []string `json:"features,omitempty"`

	// Metadata は追加のメタデータ
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// IsTrained はアンサンブルが学習済みかどうか
	IsTrained bool `json:"is_trained"`
}

// ToJSON はEnsembleWeightsをJSON形式にシリアライズ
func (w *EnsembleWeights) ToJSON() ([]byte, error) {
	return json.MarshalIndent(w, "", "  ")
}

// FromJSON はJSON形式からEnsembleWeightsをデシリアライズし、検証する
func (w *EnsembleWeights) FromJSON(data []byte) error {
	*w = EnsembleWeights{}
	if err := json.Unmarshal(data, w); err != nil {
		return errors.Wrap(err, "failed to decode ensemble weights")
	}
	return w.Validate()
}

// Validate はEnsembleWeightsの妥当性を検証
func (w *EnsembleWeights) Validate() error {
	if w.ModelType == "" {
		return errors.NewValidationError("model_type", "is required", w.ModelType)
	}
	if w.Version == "" {
		return errors.NewValidationError("version", "is required", w.Version)
	}
	if len(w.Alphas) != len(w.Stumps) {
		return errors.NewValidationError("alphas", "must have one entry per stump", len(w.Alphas))
	}
	if len(w.Stumps) > w.NEstimators {
		return errors.NewValidationError("stumps", "cannot exceed n_estimators", len(w.Stumps))
	}
	if w.IsTrained && len(w.Stumps) == 0 {
		return errors.NewValidationError("stumps", "trained ensemble must have members", 0)
	}
	if !w.IsTrained && len(w.Stumps) > 0 {
		return errors.NewValidationError("stumps", "untrained ensemble should not have members", len(w.Stumps))
	}
	for i, s := range w.Stumps {
		if s.Feature < 0 || s.Feature >= w.NFeatures {
			return errors.NewValidationError("stumps.feature", "out of range", i)
		}
		if s.Polarity != 1 && s.Polarity != -1 {
			return errors.NewValidationError("stumps.polarity", "must be -1 or +1", s.Polarity)
		}
	}
	return nil
}

// Clone はEnsembleWeightsのディープコピーを作成
func (w *EnsembleWeights) Clone() *EnsembleWeights {
	clone := &EnsembleWeights{
		ModelType:   w.ModelType,
		Version:     w.Version,
		NEstimators: w.NEstimators,
		NFeatures:   w.NFeatures,
		IsTrained:   w.IsTrained,
		Alphas:      append([]float64(nil), w.Alphas...),
		ErrorRates:  append([]float64(nil), w.ErrorRates...),
		Stumps:      append([]StumpWeights(nil), w.Stumps...),
		Features:    append([]string(nil), w.Features...),
		Metadata:    make(map[string]interface{}, len(w.Metadata)),
	}
	for k, v := range w.Metadata {
		clone.Metadata[k] = v
	}
	return clone
}
