// Command animica-node runs a single Animica chain node end to end: it
// seals blocks from its own mempool and serves the JSON-RPC/WS surface.
package main

import "os"

func main() {
	os.Exit(Execute())
}
