// Package vosk implements the streaming recognition backend against a Vosk
// websocket server (vosk-server's asr_server).
//
// The session protocol: one JSON config message, then one binary message per
// chunk of PCM frames, each answered by a JSON partial or final utterance,
// then {"eof": 1} answered by the last final utterance. Every final utterance
// is kept; the transcript is their concatenation.
package vosk
