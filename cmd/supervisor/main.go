// cmd/supervisor/main.go
package main

func main() {
	Execute()
}
