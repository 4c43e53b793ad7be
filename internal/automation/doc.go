// Package automation runs batches of experiments: scripted scenarios loaded
// from YAML and Monte Carlo ensembles around a configured initial state.
package automation
