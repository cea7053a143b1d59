package main

import "pupilla/cmd"

// @title pupilla API
// @version 1.0
// @description Eye screening analysis service: video screening for asymmetric eye movement and flash-photo pupil reflex checks.
// @BasePath /
func main() {
	cmd.Execute()
}
