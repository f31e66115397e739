//go:build !tune

package main

const tuneEnabled = false

func runTune([]string) int { return 0 }
