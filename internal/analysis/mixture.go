package analysis

import (
	"fmt"
	"math"
	"math/rand"

	"clusterlab/domain/cluster"
	"clusterlab/domain/core"
	"clusterlab/ports"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

const (
	mixtureSeed     = 7
	maxEMIterations = 200
	emTolerance     = 1e-6
	covarianceRidge = 1e-6
)

// GaussianMixture fits a mixture of Gaussians over the selected feature
// space and assigns each entity to its most probable component. The
// grouping is stored under "gm<n>".
func (a *Analyzer) GaussianMixture(cfg cluster.MixtureConfig) (cluster.Grouping, error) {
	data, err := a.featureSpace(cfg.OnComponents)
	if err != nil {
		return cluster.Grouping{}, err
	}
	m, err := fitMixture(data, cfg, false)
	if err != nil {
		return cluster.Grouping{}, err
	}
	g := a.GroupsTable(m.labels())
	a.storeResult(fmt.Sprintf("gm%d", cfg.Components), g)
	a.logger.Info("[Analyzer] gm%d: log-likelihood %.3f", cfg.Components, m.logLik)
	return g, nil
}

// BayesianGaussianMixture is the variant with a sparse Dirichlet prior on
// the component weights: low-weight components degenerate, so the number of
// effectively-used components may be smaller than requested. The grouping
// is stored under "bayesian gm<n>".
func (a *Analyzer) BayesianGaussianMixture(cfg cluster.MixtureConfig) (cluster.Grouping, error) {
	data, err := a.featureSpace(cfg.OnComponents)
	if err != nil {
		return cluster.Grouping{}, err
	}
	m, err := fitMixture(data, cfg, true)
	if err != nil {
		return cluster.Grouping{}, err
	}
	g := a.GroupsTable(m.labels())
	a.storeResult(fmt.Sprintf("bayesian gm%d", cfg.Components), g)
	a.logger.Info("[Analyzer] bayesian gm%d: %d of %d components in use",
		cfg.Components, g.ClusterCount(), cfg.Components)
	return g, nil
}

// BICSweep fits a Gaussian mixture for every component count in
// [nMin, nMax) and reports the Bayesian Information Criterion of each,
// together with the count minimizing it. Selection only: no grouping is
// stored. Counts are independent, so fits run in parallel.
func (a *Analyzer) BICSweep(nMin, nMax int, covariance cluster.Covariance, restarts, onComponents int) (cluster.BICReport, error) {
	if nMin < 1 || nMax <= nMin {
		return cluster.BICReport{}, core.NewClusteringError("bic", fmt.Sprintf("invalid sweep range [%d, %d)", nMin, nMax))
	}
	data, err := a.featureSpace(onComponents)
	if err != nil {
		return cluster.BICReport{}, err
	}

	counts := make([]int, 0, nMax-nMin)
	for n := nMin; n < nMax; n++ {
		counts = append(counts, n)
	}
	scores := make([]float64, len(counts))

	var eg errgroup.Group
	for i, n := range counts {
		i, n := i, n
		cfg := cluster.MixtureConfig{
			Components:   n,
			Covariance:   covariance,
			Restarts:     restarts,
			OnComponents: onComponents,
		}
		eg.Go(func() error {
			m, err := fitMixture(data, cfg, false)
			if err != nil {
				return err
			}
			scores[i] = m.bic(len(data), len(data[0]), covariance)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return cluster.BICReport{}, err
	}

	bestIdx := 0
	for i, s := range scores {
		if s < scores[bestIdx] {
			bestIdx = i
		}
	}
	report := cluster.BICReport{
		Counts: counts,
		Scores: scores,
		BestN:  counts[bestIdx],
		Best:   scores[bestIdx],
	}
	a.renderBIC(report)
	a.logger.Info("[Analyzer] minimum BIC %.1f at %d gaussian components", report.Best, report.BestN)
	return report, nil
}

func (a *Analyzer) renderBIC(report cluster.BICReport) {
	if a.renderer == nil {
		return
	}
	x := make([]float64, len(report.Counts))
	for i, n := range report.Counts {
		x[i] = float64(n)
	}
	err := a.renderer.Line("BIC by component count", x, []ports.LineSeries{
		{Name: "BIC", Y: report.Scores},
	})
	if err != nil {
		a.logger.Warn("[Analyzer] BIC curve render failed: %v", err)
	}
}

// mixtureModel is one converged EM fit.
type mixtureModel struct {
	weights []float64
	means   [][]float64
	covs    []*mat.SymDense
	resp    *mat.Dense // n x k responsibilities
	logLik  float64
}

// labels assigns each observation to its most probable component,
// numbering components from 1.
func (m *mixtureModel) labels() []int {
	n, k := m.resp.Dims()
	out := make([]int, n)
	for i := 0; i < n; i++ {
		best, bestVal := 0, math.Inf(-1)
		for c := 0; c < k; c++ {
			if v := m.resp.At(i, c); v > bestVal {
				best, bestVal = c, v
			}
		}
		out[i] = best + 1
	}
	return out
}

// bic penalizes the log-likelihood by model complexity: -2 ln L + p ln n.
func (m *mixtureModel) bic(n, dim int, covariance cluster.Covariance) float64 {
	k := len(m.weights)
	p := k - 1 + k*dim // weights + means
	switch covariance {
	case cluster.Full:
		p += k * dim * (dim + 1) / 2
	case cluster.Diag:
		p += k * dim
	case cluster.Tied:
		p += dim * (dim + 1) / 2
	case cluster.Spherical:
		p += k
	}
	return -2*m.logLik + float64(p)*math.Log(float64(n))
}

// fitMixture runs EM with the configured restarts and keeps the best fit by
// log-likelihood. Restart seeds are fixed, so identical inputs give
// identical fits.
func fitMixture(data [][]float64, cfg cluster.MixtureConfig, bayesian bool) (*mixtureModel, error) {
	n := len(data)
	if n == 0 {
		return nil, core.NewClusteringError("gaussian mixture", "no observations")
	}
	k := cfg.Components
	if k < 1 || k > n {
		return nil, core.NewClusteringError("gaussian mixture", fmt.Sprintf("component count %d outside [1, %d]", k, n))
	}
	switch cfg.Covariance {
	case cluster.Full, cluster.Diag, cluster.Tied, cluster.Spherical:
	default:
		return nil, core.NewClusteringError("gaussian mixture", fmt.Sprintf("unknown covariance type %q", cfg.Covariance))
	}
	restarts := cfg.Restarts
	if restarts < 1 {
		restarts = 1
	}

	var best *mixtureModel
	var lastErr error
	for r := 0; r < restarts; r++ {
		m, err := runEM(data, k, cfg.Covariance, bayesian, int64(r))
		if err != nil {
			lastErr = err
			continue
		}
		if best == nil || m.logLik > best.logLik {
			best = m
		}
	}
	if best == nil {
		return nil, lastErr
	}
	return best, nil
}

func runEM(data [][]float64, k int, covariance cluster.Covariance, bayesian bool, restart int64) (*mixtureModel, error) {
	n, dim := len(data), len(data[0])
	rng := rand.New(rand.NewSource(mixtureSeed + restart))

	m := &mixtureModel{
		weights: make([]float64, k),
		means:   make([][]float64, k),
		covs:    make([]*mat.SymDense, k),
		resp:    mat.NewDense(n, k, nil),
	}
	perm := rng.Perm(n)
	for c := 0; c < k; c++ {
		m.means[c] = append([]float64(nil), data[perm[c]]...)
	}
	initCov := dataCovarianceDiag(data)
	for c := 0; c < k; c++ {
		m.weights[c] = 1 / float64(k)
		m.covs[c] = mat.NewSymDense(dim, nil)
		m.covs[c].CopySym(initCov)
	}

	// Sparse Dirichlet weight prior for the Bayesian variant; MAP updates
	// drive unneeded component weights to zero.
	alpha := 1 / float64(k)

	logRow := make([]float64, k)
	prevLL := math.Inf(-1)
	for iter := 0; iter < maxEMIterations; iter++ {
		// E step.
		dists := make([]*distmv.Normal, k)
		for c := 0; c < k; c++ {
			normal, ok := distmv.NewNormal(m.means[c], m.covs[c], nil)
			if !ok {
				return nil, core.NewClusteringError("gaussian mixture", "degenerate covariance")
			}
			dists[c] = normal
		}
		ll := 0.0
		for i, x := range data {
			for c := 0; c < k; c++ {
				logRow[c] = math.Log(m.weights[c]) + dists[c].LogProb(x)
			}
			lse := floats.LogSumExp(logRow)
			ll += lse
			for c := 0; c < k; c++ {
				m.resp.Set(i, c, math.Exp(logRow[c]-lse))
			}
		}
		m.logLik = ll
		if math.Abs(ll-prevLL) < emTolerance*(1+math.Abs(ll)) {
			break
		}
		prevLL = ll

		// M step.
		nk := make([]float64, k)
		for c := 0; c < k; c++ {
			for i := 0; i < n; i++ {
				nk[c] += m.resp.At(i, c)
			}
		}
		for c := 0; c < k; c++ {
			if nk[c] < 1e-10 {
				continue // degenerate component keeps its parameters
			}
			mean := make([]float64, dim)
			for i, x := range data {
				floats.AddScaled(mean, m.resp.At(i, c), x)
			}
			floats.Scale(1/nk[c], mean)
			m.means[c] = mean
		}
		updateCovariances(m, data, nk, covariance)

		if bayesian {
			total := 0.0
			for c := 0; c < k; c++ {
				m.weights[c] = math.Max(nk[c]+alpha-1, 0)
				total += m.weights[c]
			}
			if total == 0 {
				for c := 0; c < k; c++ {
					m.weights[c] = 1 / float64(k)
				}
			} else {
				floats.Scale(1/total, m.weights)
			}
		} else {
			for c := 0; c < k; c++ {
				m.weights[c] = nk[c] / float64(n)
			}
		}
	}
	return m, nil
}

// updateCovariances recomputes component covariances under the configured
// structure, with a small ridge keeping them positive definite.
func updateCovariances(m *mixtureModel, data [][]float64, nk []float64, covariance cluster.Covariance) {
	n, dim := len(data), len(data[0])
	k := len(m.weights)

	full := func(c int, denom float64, into *mat.SymDense) {
		for i, x := range data {
			r := m.resp.At(i, c)
			if r == 0 {
				continue
			}
			for p := 0; p < dim; p++ {
				dp := x[p] - m.means[c][p]
				for q := p; q < dim; q++ {
					dq := x[q] - m.means[c][q]
					into.SetSym(p, q, into.At(p, q)+r*dp*dq/denom)
				}
			}
		}
	}

	switch covariance {
	case cluster.Tied:
		pooled := mat.NewSymDense(dim, nil)
		for c := 0; c < k; c++ {
			full(c, float64(n), pooled)
		}
		addRidge(pooled)
		for c := 0; c < k; c++ {
			m.covs[c].CopySym(pooled)
		}
	default:
		for c := 0; c < k; c++ {
			if nk[c] < 1e-10 {
				continue
			}
			cov := mat.NewSymDense(dim, nil)
			full(c, nk[c], cov)
			switch covariance {
			case cluster.Diag:
				diagOnly(cov)
			case cluster.Spherical:
				sphericalize(cov)
			}
			addRidge(cov)
			m.covs[c] = cov
		}
	}
}

func addRidge(s *mat.SymDense) {
	dim := s.SymmetricDim()
	for i := 0; i < dim; i++ {
		s.SetSym(i, i, s.At(i, i)+covarianceRidge)
	}
}

func diagOnly(s *mat.SymDense) {
	dim := s.SymmetricDim()
	for i := 0; i < dim; i++ {
		for j := i + 1; j < dim; j++ {
			s.SetSym(i, j, 0)
		}
	}
}

func sphericalize(s *mat.SymDense) {
	dim := s.SymmetricDim()
	avg := 0.0
	for i := 0; i < dim; i++ {
		avg += s.At(i, i)
	}
	avg /= float64(dim)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			if i == j {
				s.SetSym(i, j, avg)
			} else {
				s.SetSym(i, j, 0)
			}
		}
	}
}

// dataCovarianceDiag is the diagonal sample covariance used to initialize
// every component.
func dataCovarianceDiag(data [][]float64) *mat.SymDense {
	n, dim := len(data), len(data[0])
	out := mat.NewSymDense(dim, nil)
	for j := 0; j < dim; j++ {
		mean := 0.0
		for _, x := range data {
			mean += x[j]
		}
		mean /= float64(n)
		v := 0.0
		for _, x := range data {
			d := x[j] - mean
			v += d * d
		}
		v /= float64(n)
		out.SetSym(j, j, v+covarianceRidge)
	}
	return out
}
