package nba

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/richard-senior/nbapredict/internal/logger"
)

// hiddenSizes fixes the architecture: input, 128 relu, 64 relu, 1 sigmoid
var hiddenSizes = []int{128, 64}

const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-7
)

// architecture describes a network with the given input width. Persisted
// weights carry it so that a changed shape is detected on load
func architecture(inputs int) string {
	return fmt.Sprintf("dense:%d-%d:relu-%d:relu-1:sigmoid/bce/adam", inputs, hiddenSizes[0], hiddenSizes[1])
}

// DenseLayer is a fully connected layer, Weights is Out rows of In columns
type DenseLayer struct {
	In      int       `json:"in"`
	Out     int       `json:"out"`
	Weights []float64 `json:"weights"`
	Biases  []float64 `json:"biases"`

	// Adam moments, not persisted
	mW, vW, mB, vB []float64
}

func newDenseLayer(in, out int, rng *rand.Rand) *DenseLayer {
	l := &DenseLayer{In: in, Out: out, Weights: make([]float64, in*out), Biases: make([]float64, out)}
	// glorot uniform
	limit := math.Sqrt(6.0 / float64(in+out))
	for i := range l.Weights {
		l.Weights[i] = (rng.Float64()*2 - 1) * limit
	}
	return l
}

func (l *DenseLayer) forward(x []float64) []float64 {
	z := make([]float64, l.Out)
	for o := 0; o < l.Out; o++ {
		row := l.Weights[o*l.In : (o+1)*l.In]
		sum := l.Biases[o]
		for i, v := range x {
			if v != 0 {
				sum += row[i] * v
			}
		}
		z[o] = sum
	}
	return z
}

// adamStep applies averaged gradients gW and gB at step t
func (l *DenseLayer) adamStep(gW, gB []float64, lr float64, t int) {
	if l.mW == nil {
		l.mW, l.vW = make([]float64, len(l.Weights)), make([]float64, len(l.Weights))
		l.mB, l.vB = make([]float64, len(l.Biases)), make([]float64, len(l.Biases))
	}
	c1 := 1 - math.Pow(adamBeta1, float64(t))
	c2 := 1 - math.Pow(adamBeta2, float64(t))
	update := func(p, m, v, g []float64) {
		for i := range p {
			m[i] = adamBeta1*m[i] + (1-adamBeta1)*g[i]
			v[i] = adamBeta2*v[i] + (1-adamBeta2)*g[i]*g[i]
			p[i] -= lr * (m[i] / c1) / (math.Sqrt(v[i]/c2) + adamEpsilon)
		}
	}
	update(l.Weights, l.mW, l.vW, gW)
	update(l.Biases, l.mB, l.vB, gB)
}

// Network is a small feed forward binary classifier
type Network struct {
	Layers []*DenseLayer `json:"layers"`
}

// NewNetwork creates a network with inputs features and seeded glorot initialisation
func NewNetwork(inputs int, seed int64) *Network {
	rng := newRand(seed)
	sizes := append([]int{inputs}, hiddenSizes...)
	sizes = append(sizes, 1)

	n := &Network{}
	for i := 0; i+1 < len(sizes); i++ {
		n.Layers = append(n.Layers, newDenseLayer(sizes[i], sizes[i+1], rng))
	}
	return n
}

// Inputs returns the expected feature width
func (n *Network) Inputs() int {
	if len(n.Layers) == 0 {
		return 0
	}
	return n.Layers[0].In
}

// Architecture describes the shape of this network
func (n *Network) Architecture() string {
	return architecture(n.Inputs())
}

// Predict returns the sigmoid output for one feature row
func (n *Network) Predict(x []float64) float64 {
	acts := n.activations(x)
	return acts[len(acts)-1][0]
}

// activations returns the input followed by the output of every layer
func (n *Network) activations(x []float64) [][]float64 {
	acts := [][]float64{x}
	a := x
	for li, l := range n.Layers {
		z := l.forward(a)
		if li == len(n.Layers)-1 {
			for i := range z {
				z[i] = sigmoid(z[i])
			}
		} else {
			for i := range z {
				z[i] = max(z[i], 0)
			}
		}
		acts = append(acts, z)
		a = z
	}
	return acts
}

// Fit trains with mini batch Adam on binary cross entropy. Rows are
// shuffled each epoch from seed so a run is reproducible
func (n *Network) Fit(X [][]float64, y []float64, epochs, batchSize int, lr float64, seed int64) {
	rng := newRand(seed + 1)
	order := make([]int, len(X))
	for i := range order {
		order[i] = i
	}

	gW := make([][]float64, len(n.Layers))
	gB := make([][]float64, len(n.Layers))
	for li, l := range n.Layers {
		gW[li] = make([]float64, len(l.Weights))
		gB[li] = make([]float64, len(l.Biases))
	}

	step := 0
	for epoch := 1; epoch <= epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		loss := 0.0
		for start := 0; start < len(order); start += batchSize {
			end := min(start+batchSize, len(order))
			for li := range n.Layers {
				clear(gW[li])
				clear(gB[li])
			}
			for _, idx := range order[start:end] {
				loss += n.backprop(X[idx], y[idx], gW, gB)
			}
			scale := 1.0 / float64(end-start)
			step++
			for li, l := range n.Layers {
				for i := range gW[li] {
					gW[li][i] *= scale
				}
				for i := range gB[li] {
					gB[li][i] *= scale
				}
				l.adamStep(gW[li], gB[li], lr, step)
			}
		}
		logger.Debug(fmt.Sprintf("epoch %d/%d loss %.4f", epoch, epochs, loss/float64(len(order))))
	}
}

// backprop accumulates the gradients of one row into gW and gB and returns its loss
func (n *Network) backprop(x []float64, target float64, gW, gB [][]float64) float64 {
	acts := n.activations(x)
	p := acts[len(acts)-1][0]

	// sigmoid with cross entropy reduces to p - y
	delta := []float64{p - target}
	for li := len(n.Layers) - 1; li >= 0; li-- {
		l := n.Layers[li]
		in := acts[li]
		for o := 0; o < l.Out; o++ {
			d := delta[o]
			if d == 0 {
				continue
			}
			gB[li][o] += d
			row := gW[li][o*l.In : (o+1)*l.In]
			for i, v := range in {
				if v != 0 {
					row[i] += d * v
				}
			}
		}
		if li == 0 {
			break
		}
		prev := make([]float64, l.In)
		for i := 0; i < l.In; i++ {
			if in[i] <= 0 {
				continue
			}
			sum := 0.0
			for o := 0; o < l.Out; o++ {
				sum += l.Weights[o*l.In+i] * delta[o]
			}
			prev[i] = sum
		}
		delta = prev
	}
	return binaryCrossEntropy(p, target)
}

func binaryCrossEntropy(p, y float64) float64 {
	p = math.Min(math.Max(p, adamEpsilon), 1-adamEpsilon)
	return -(y*math.Log(p) + (1-y)*math.Log(1-p))
}

func sigmoid(z float64) float64 {
	if z > 30 {
		return 1.0
	}
	if z < -30 {
		return 0.0
	}
	return 1.0 / (1.0 + math.Exp(-z))
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}
