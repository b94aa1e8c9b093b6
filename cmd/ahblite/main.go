// Command ahblite generates random AHB-Lite3 bursts and runs them through a
// simulated bus with a memory slave.
package main

func main() {
	Execute()
}
