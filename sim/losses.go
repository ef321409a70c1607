package sim

import "math"

// KineticEnergyIn is the kinetic power (W) the pump imparts to the feed entering pipe.
func KineticEnergyIn(pipe Pipe, massFlowRate, volumetricFlowRate float64) float64 {
	v := volumetricFlowRate / pipe.CrossSection()
	return 0.5 * massFlowRate * v * v
}

// PumpLoss is the share of energyIn dissipated by the pump.
func PumpLoss(pump Pump, energyIn float64) float64 {
	return (1 - pump.Efficiency) * energyIn
}

// PipeFriction is the Darcy–Weisbach loss (W) along a straight run.
func PipeFriction(c Constants, pipe Pipe, density, flowRate float64) float64 {
	hdw := pipe.FrictionFactor * (8 / (c.Gravity * math.Pi * math.Pi)) *
		(pipe.Length * flowRate * flowRate) / math.Pow(pipe.Diameter, 5)
	return density * flowRate * hdw
}

// ValveLoss is the minor loss (W) across one valve pass.
func ValveLoss(c Constants, valve Valve, density, flowRate float64) float64 {
	v := flowRate / crossSection(valve.Diameter)
	hdw := valve.FlowCoefficient * v * v / (2 * c.Gravity)
	return density * flowRate * hdw
}

// BendLoss is the loss across pipe bends. The line has none.
func BendLoss() float64 {
	return 0
}
