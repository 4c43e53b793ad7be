// Package viz renders chains and time series for the terminal.
//
//   - [Canvas]: braille dot canvas with chain and trail drawing
//   - [SeriesPlot], [AnglesPlot]: asciigraph line charts of a run
//   - lipgloss styles and colour themes shared with the live view
package viz
