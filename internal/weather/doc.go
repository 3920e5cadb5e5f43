// Package weather supplies the temperature signal strategies trade against.
//
// Observations come from the NWS station observation feed. Each reading
// carries the instantaneous print and, on synoptic-hour reports, the METAR
// six-hour maximum group. The client tracks the running daily maximum per
// local calendar day, which is the reference value the strategies compare
// against market strikes.
package weather
