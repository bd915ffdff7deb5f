package model

import (
	"math"

	"github.com/yourusername/theory-engine/internal/models"
)

const learningRate = 0.1

// column extracts one feature column with mean imputation, returning the
// imputed column and the missing count.
func column(rows []*models.CohortRow, name string) ([]float64, int) {
	col := make([]float64, len(rows))
	present := make([]bool, len(rows))
	var sum float64
	var n int
	for i, row := range rows {
		if v, ok := row.FeatureValue(name); ok {
			col[i] = v
			present[i] = true
			sum += v
			n++
		}
	}
	mean := 0.0
	if n > 0 {
		mean = sum / float64(n)
	}
	for i := range col {
		if !present[i] {
			col[i] = mean
		}
	}
	return col, len(rows) - n
}

// designMatrix standardizes the kept feature columns row-major
func designMatrix(rows []*models.CohortRow, feats []models.GeneratedFeature) (matrix [][]float64, means, stds []float64) {
	cols := make([][]float64, len(feats))
	means = make([]float64, len(feats))
	stds = make([]float64, len(feats))
	for j, f := range feats {
		col, _ := column(rows, f.Name)
		cols[j] = col
		means[j] = meanOf(col)
		stds[j] = math.Sqrt(variance(col))
	}

	matrix = make([][]float64, len(rows))
	for i := range rows {
		matrix[i] = make([]float64, len(feats))
		for j := range feats {
			matrix[i][j] = standardize(cols[j][i], means[j], stds[j])
		}
	}
	return matrix, means, stds
}

// gradientDescent fits L2-regularized logistic (binary) or linear weights.
// Returns ok=false when the fit produces non-finite values.
func (b *Builder) gradientDescent(matrix [][]float64, targets []float64, binary bool) (weights []float64, intercept float64, ok bool) {
	n := len(matrix)
	if n == 0 {
		return nil, 0, false
	}
	k := len(matrix[0])
	weights = make([]float64, k)

	for iter := 0; iter < b.cfg.FitIterations; iter++ {
		gradW := make([]float64, k)
		var gradB float64
		for i := 0; i < n; i++ {
			z := intercept
			for j := 0; j < k; j++ {
				z += weights[j] * matrix[i][j]
			}
			pred := z
			if binary {
				pred = sigmoid(z)
			}
			residual := pred - targets[i]
			gradB += residual
			for j := 0; j < k; j++ {
				gradW[j] += residual * matrix[i][j]
			}
		}

		intercept -= learningRate * gradB / float64(n)
		for j := 0; j < k; j++ {
			// Regularization never touches the intercept.
			grad := gradW[j]/float64(n) + b.cfg.RegularizationLambda*weights[j]
			weights[j] -= learningRate * grad
		}

		if !math.IsInf(intercept, 0) && !math.IsNaN(intercept) {
			continue
		}
		return nil, 0, false
	}

	for _, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, 0, false
		}
	}
	return weights, intercept, true
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func standardize(v, mean, std float64) float64 {
	if std == 0 {
		return 0
	}
	return (v - mean) / std
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := meanOf(values)
	var ss float64
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	return ss / float64(len(values))
}

func correlation(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	meanA, meanB := meanOf(a), meanOf(b)
	var cov, varA, varB float64
	for i := range a {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}
