// Package stream maintains the WebSocket ticker subscription. One signed
// connection carries top-of-book updates for the day's markets; decoded
// prints feed the recorder. The stream is observational only, the trading
// loop reads books over REST.
package stream
