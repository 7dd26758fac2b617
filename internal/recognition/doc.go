// Package recognition defines the contract every speech recognition backend
// implements and the result shape the rest of the pipeline consumes.
//
// A Recognizer turns one normalized WAV file into a Result. Streaming
// backends report word timings; whole-file backends may report native
// segments instead. Exactly one of the two is authoritative, and a Result
// with neither (and no text) means the audio contained no recognizable speech.
//
// Cancellation is carried by the context. Backends return ErrCancelled when
// they observe it so callers can tell a user stop apart from a failure.
//
// Backends register with a Registry; the CLI picks one by name.
package recognition
