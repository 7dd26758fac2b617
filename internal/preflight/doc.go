// Package preflight provides readiness checks for the external tools,
// recognition backend and filesystem paths vidscribe depends on.
//
// These checks run in two contexts:
//   - "vidscribe run" and "vidscribe watch" call RunAll before starting a job
//     and refuse to start when a required check fails.
//   - "vidscribe status" renders CheckSystemDeps and CheckBackend results as
//     a table.
package preflight
