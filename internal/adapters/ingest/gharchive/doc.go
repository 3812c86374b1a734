// Package gharchive reads GH Archive hourly gzip files for replay
//
// Hours are streamed line by line with a large scanner buffer since push
// events with many commits can be several megabytes. Malformed lines are
// skipped. Payloads stay raw until the classifier decodes them.
package gharchive
