// Command rmap is a cobra CLI for exercising a rmap.Client against a
// running remote map server: ad hoc get/put/remove/size/entries
// commands for poking at a map by hand, and a perf subcommand for ad
// hoc latency benchmarking.
package main
