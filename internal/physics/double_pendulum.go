package physics

import (
	"math"

	"github.com/san-kum/nlink/internal/dynamo"
)

// DoublePendulum is the explicit two-link solution of the Lagrangian
// equations. Chain with FormulationLagrangian must agree with it.
type DoublePendulum struct {
	M1, M2  float64
	L1, L2  float64
	Gravity float64
}

func NewDoublePendulum() *DoublePendulum {
	return &DoublePendulum{
		M1: 1, M2: 1,
		L1: 1, L2: 1,
		Gravity: dynamo.StandardGravity,
	}
}

func (d *DoublePendulum) Dim() int { return 2 }

func (d *DoublePendulum) Derive(x dynamo.State) dynamo.State {
	theta1, theta2 := x.Theta[0], x.Theta[1]
	omega1, omega2 := x.DTheta[0], x.DTheta[1]
	m1, m2, l1, l2, g := d.M1, d.M2, d.L1, d.L2, d.Gravity

	delta := theta2 - theta1
	sinD, cosD := math.Sin(delta), math.Cos(delta)

	den1 := (m1+m2)*l1 - m2*l1*cosD*cosD
	den2 := (l2 / l1) * den1

	alpha1 := (m2*l1*omega1*omega1*sinD*cosD +
		m2*g*math.Sin(theta2)*cosD +
		m2*l2*omega2*omega2*sinD -
		(m1+m2)*g*math.Sin(theta1)) / den1

	alpha2 := (-m2*l2*omega2*omega2*sinD*cosD +
		(m1+m2)*g*math.Sin(theta1)*cosD -
		(m1+m2)*l1*omega1*omega1*sinD -
		(m1+m2)*g*math.Sin(theta2)) / den2

	return dynamo.State{
		Theta:  []float64{omega1, omega2},
		DTheta: []float64{alpha1, alpha2},
	}
}

func (d *DoublePendulum) Energy(x dynamo.State) float64 {
	theta1, theta2 := x.Theta[0], x.Theta[1]
	omega1, omega2 := x.DTheta[0], x.DTheta[1]
	m1, m2, l1, l2, g := d.M1, d.M2, d.L1, d.L2, d.Gravity

	v1sq := l1 * l1 * omega1 * omega1
	v2sq := l1*l1*omega1*omega1 + l2*l2*omega2*omega2 +
		2*l1*l2*omega1*omega2*math.Cos(theta1-theta2)

	ke := 0.5*m1*v1sq + 0.5*m2*v2sq
	y1 := -l1 * math.Cos(theta1)
	y2 := y1 - l2*math.Cos(theta2)
	pe := m1*g*y1 + m2*g*y2

	return ke + pe
}
