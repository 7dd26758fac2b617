// Command vidscribe transcribes the spoken audio of every video under a
// folder into timestamped text files placed next to the sources.
//
// Subcommands:
//
//	run [root]       transcribe a folder once
//	watch [root]     transcribe, then rerun whenever new videos appear
//	summary [root]   concatenate existing transcripts into summary.txt
//	status           report external tools and backend availability
//	config init      write a sample configuration file
//	config validate  load and validate the configuration
package main
