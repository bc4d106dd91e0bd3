package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
)

func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:5000"
	}
	key := os.Getenv("ADMIN_API_KEY")

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Host to monitor (e.g. example.com): ")
	host, _ := reader.ReadString('\n')
	host = strings.TrimSpace(host)
	if host == "" {
		fmt.Println("No host given.")
		return
	}

	fmt.Print("Protocol [http/tcp/icmp] (default http): ")
	proto, _ := reader.ReadString('\n')
	proto = strings.TrimSpace(strings.ToLower(proto))
	if proto == "" {
		proto = "http"
	}

	port := 0
	if proto != "icmp" {
		fmt.Print("Port (empty for protocol default): ")
		raw, _ := reader.ReadString('\n')
		raw = strings.TrimSpace(raw)
		if raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				fmt.Println("Invalid port.")
				return
			}
			port = n
		}
	}

	payload := map[string]any{
		"host":     host,
		"protocol": proto,
	}
	if port > 0 {
		payload["port"] = port
	}

	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPost, api+"/api/targets", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("Error contacting API:", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var created struct {
			ID string `json:"id"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&created)
		fmt.Println("Added! Target id:", created.ID)
		fmt.Printf("Watch it: GET %s/api/targets/%s/status\n", api, created.ID)
	} else {
		fmt.Println("API returned status:", resp.Status)
	}
}
