// Package events provides an in-memory publish/subscribe hub used to fan out
// generation status frames to the streams watching a task.
//
// Each topic (a task id) has any number of subscribers. A subscriber owns a
// buffered channel; publishing never blocks, and a frame that does not fit in
// a subscriber's buffer is dropped for that subscriber only. Closing a topic
// closes every subscriber channel, which is how streams learn that a task has
// reached its terminal state.
package events
