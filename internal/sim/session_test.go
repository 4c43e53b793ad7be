package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/nlink/internal/dynamo"
	"github.com/san-kum/nlink/internal/integrators"
	"github.com/san-kum/nlink/internal/physics"
	"github.com/san-kum/nlink/internal/sim"
)

func newChain(n int, f physics.Formulation) *physics.Chain {
	masses := make([]float64, n)
	lengths := make([]float64, n)
	for i := range masses {
		masses[i] = float64(i+1) * 0.5
		lengths[i] = float64(i+1) * 0.5
	}
	p, err := dynamo.NewParams(masses, lengths, dynamo.StandardGravity)
	Expect(err).NotTo(HaveOccurred())
	return physics.NewChain(p, f)
}

func horizontal(n int) dynamo.State {
	x := dynamo.NewState(n)
	for i := range x.Theta {
		x.Theta[i] = math.Pi / 2
	}
	return x
}

var _ = Describe("Simulator", func() {
	var cfg dynamo.Config

	BeforeEach(func() {
		cfg = dynamo.Config{Dt: 0.01, Duration: 2, Cadence: 10, ValidateState: true}
	})

	Context("with a single link", func() {
		It("records positions and energy in every snapshot", func() {
			s := sim.New(newChain(1, physics.FormulationLegacy), integrators.NewRK4())
			result, err := s.Run(context.Background(), horizontal(1), cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Snapshots).To(HaveLen(21))
			for _, snap := range result.Snapshots {
				Expect(snap.Positions).To(HaveLen(1))
				r := math.Hypot(snap.Positions[0].X, snap.Positions[0].Y)
				Expect(r).To(BeNumerically("~", 0.5, 1e-12))
				Expect(snap.Energy).To(BeNumerically("~", result.Snapshots[0].Energy, 1e-4))
			}
		})
	})

	Context("with the Lagrangian formulation", func() {
		It("conserves energy for a triple pendulum", func() {
			x0 := dynamo.State{Theta: []float64{0.6, -0.3, 0.2}, DTheta: []float64{0, 0, 0.5}}
			s := sim.New(newChain(3, physics.FormulationLagrangian), integrators.NewRK4())
			result, err := s.Run(context.Background(), x0, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Failed()).To(BeFalse())
			Expect(result.EnergyDrift).To(BeNumerically("<", 1e-3))
		})
	})

	It("is deterministic", func() {
		run := func() *dynamo.Result {
			s := sim.New(newChain(5, physics.FormulationLegacy), integrators.NewRK4())
			result, err := s.Run(context.Background(), horizontal(5), dynamo.Config{Dt: 0.01, Duration: 0.5, Cadence: 10})
			Expect(err).NotTo(HaveOccurred())
			return result
		}
		a, b := run(), run()
		Expect(a.Snapshots).To(HaveLen(len(b.Snapshots)))
		for i := range a.Snapshots {
			Expect(a.Snapshots[i].State.Theta).To(Equal(b.Snapshots[i].State.Theta))
			Expect(a.Snapshots[i].State.DTheta).To(Equal(b.Snapshots[i].State.DTheta))
		}
	})
})

var _ = Describe("Session", func() {
	It("produces the same trajectory as Run when advanced in chunks", func() {
		cfg := dynamo.Config{Dt: 0.01, Duration: 1, Cadence: 7}
		x0 := dynamo.State{Theta: []float64{1, 0.5}, DTheta: []float64{0, 0}}

		batch, err := sim.New(newChain(2, physics.FormulationLagrangian), integrators.NewRK4()).
			Run(context.Background(), x0, cfg)
		Expect(err).NotTo(HaveOccurred())

		sess, err := sim.New(newChain(2, physics.FormulationLagrangian), integrators.NewRK4()).Start(x0, cfg)
		Expect(err).NotTo(HaveOccurred())
		for !sess.Done() {
			_, err := sess.Advance(13)
			Expect(err).NotTo(HaveOccurred())
		}
		stepped := sess.Finish()

		Expect(stepped.StepsTaken).To(Equal(batch.StepsTaken))
		Expect(stepped.Snapshots).To(HaveLen(len(batch.Snapshots)))
		Expect(stepped.Final.Theta).To(Equal(batch.Final.Theta))
		Expect(sess.Finish()).To(BeIdenticalTo(stepped))
	})

	It("stops advancing at the time limit", func() {
		sess, err := sim.New(newChain(1, physics.FormulationLegacy), integrators.NewRK4()).
			Start(horizontal(1), dynamo.Config{Dt: 0.1, Duration: 1, Cadence: 1})
		Expect(err).NotTo(HaveOccurred())

		taken, err := sess.Advance(100)
		Expect(err).NotTo(HaveOccurred())
		Expect(taken).To(Equal(10))
		Expect(sess.Done()).To(BeTrue())
		Expect(sess.Time()).To(BeNumerically("~", 1.0, 1e-12))

		taken, err = sess.Advance(5)
		Expect(err).NotTo(HaveOccurred())
		Expect(taken).To(BeZero())
	})

	It("exposes the current state without emitting it", func() {
		sess, err := sim.New(newChain(2, physics.FormulationLegacy), integrators.NewRK4()).
			Start(horizontal(2), dynamo.Config{Dt: 0.01, Duration: 1, Cadence: 10})
		Expect(err).NotTo(HaveOccurred())

		_, err = sess.Advance(3)
		Expect(err).NotTo(HaveOccurred())
		cur := sess.Snapshot()
		Expect(cur.Step).To(Equal(3))
		Expect(cur.Positions).To(HaveLen(2))
		Expect(sess.StepIndex()).To(Equal(3))
	})
})

var _ = Describe("Ensemble", func() {
	factory := func() (dynamo.System, dynamo.Integrator) {
		return newChain(2, physics.FormulationLagrangian), integrators.NewRK4()
	}

	It("matches sequential runs in input order", func() {
		cfg := dynamo.Config{Dt: 0.01, Duration: 0.5, Cadence: 10}
		inits := make([]dynamo.State, 6)
		for i := range inits {
			inits[i] = dynamo.State{Theta: []float64{0.2 * float64(i+1), 0}, DTheta: []float64{0, 0}}
		}

		ens := sim.NewEnsemble(factory)
		ens.SetLimit(3)
		results, err := ens.Run(context.Background(), inits, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(len(inits)))

		for i, x0 := range inits {
			sys, integ := factory()
			want, err := sim.New(sys, integ).Run(context.Background(), x0, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[i].Final.Theta).To(Equal(want.Final.Theta))
		}
	})

	It("fails when any run is misconfigured", func() {
		inits := []dynamo.State{dynamo.NewState(2), dynamo.NewState(3)}
		_, err := sim.NewEnsemble(factory).Run(context.Background(), inits, dynamo.Config{Dt: 0.01, Duration: 0.1})
		Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
	})
})
