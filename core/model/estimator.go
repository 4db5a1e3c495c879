package model

import "gonum.org/v1/gonum/mat"

// WeakLearner は重み付きで学習できる二値分類器のインターフェース
//
// ラベルと予測値は常に -1 または +1 で表現する。
// ブースティングは毎ラウンド新しいインスタンスを WeakLearnerFactory から生成し、
// Fit を一度だけ呼び出す。
type WeakLearner interface {
	// Fit は X (n × p) と y (長さ n) をサンプル重み sampleWeight (長さ n) で学習する
	Fit(X mat.Matrix, y []float64, sampleWeight []float64) error

	// Predict は各行のラベル (-1 または +1) を返す
	Predict(X mat.Matrix) ([]float64, error)
}

// WeakLearnerFactory は未学習の WeakLearner を生成する
type WeakLearnerFactory func() WeakLearner

// Classifier はラベルベクトルで学習・予測する二値分類器のインターフェース
type Classifier interface {
	// Train はモデルを訓練データで学習させる
	Train(X mat.Matrix, y []float64) error

	// Predict は入力データに対する予測ラベルを返す
	Predict(X mat.Matrix) ([]float64, error)
}

// Fitter は列ベクトル y (n × 1) で学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}
