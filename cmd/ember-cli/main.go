// Command ember-cli is a line-oriented REPL client for ember-server,
// mirroring original_source/cauchy/client.py's Client.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

func main() {
	host := flag.String("host", "127.0.0.1", "server host")
	port := flag.Int("port", 65432, "server port")
	flag.Parse()

	addr := net.JoinHostPort(*host, strconv.Itoa(*port))
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		fmt.Println("There was an error:", err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Println("Connected to server", *host, ":", *port)

	scanner := bufio.NewScanner(os.Stdin)
	buf := make([]byte, 1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		message := scanner.Text()

		if strings.EqualFold(message, "exit") {
			break
		}

		if _, err := conn.Write([]byte(message)); err != nil {
			fmt.Println("There was an error:", err)
			break
		}

		n, err := conn.Read(buf)
		if err != nil {
			fmt.Println("There was an error:", err)
			break
		}
		fmt.Println(string(buf[:n]))
	}

	fmt.Println("Connection closed")
}
