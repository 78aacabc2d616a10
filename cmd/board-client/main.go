package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/uhyunpark/orderboard/pkg/api"
)

const usage = `usage: board-client [-addr URL] <command> [flags]

commands:
  register -user ID -qty KG -price GBP -side SELL|BUY
  cancel   -user ID -qty KG -price GBP -side SELL|BUY
  summary
`

func main() {
	addr := flag.String("addr", "http://localhost:8080", "board API base URL")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	var err error
	switch cmd := flag.Arg(0); cmd {
	case "register":
		err = submit(client, *addr+"/api/v1/orders", flag.Args()[1:])
	case "cancel":
		err = submit(client, *addr+"/api/v1/orders/cancel", flag.Args()[1:])
	case "summary":
		err = summary(client, *addr+"/api/v1/summary")
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func submit(client *http.Client, url string, args []string) error {
	fs := flag.NewFlagSet("order", flag.ExitOnError)
	user := fs.String("user", "", "participant id")
	qty := fs.String("qty", "", "quantity in kg, e.g. 22.35")
	price := fs.Int64("price", 0, "unit price in £ per kg")
	side := fs.String("side", "", "SELL or BUY")
	fs.Parse(args)

	quantity, err := decimal.NewFromString(*qty)
	if err != nil {
		return fmt.Errorf("bad -qty %q: %w", *qty, err)
	}

	body, err := json.Marshal(api.OrderRequest{
		ParticipantID: *user,
		Quantity:      quantity,
		UnitPrice:     *price,
		Side:          *side,
	})
	if err != nil {
		return err
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	var ok api.OrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&ok); err != nil {
		return err
	}
	fmt.Println(ok.Status)
	return nil
}

func summary(client *http.Client, url string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	var s api.SummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return err
	}
	if len(s.Lines) == 0 {
		fmt.Println("(no orders)")
	}
	for _, line := range s.Lines {
		fmt.Println(line)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)
	var e api.ErrorResponse
	if err := json.Unmarshal(raw, &e); err != nil || e.Error == "" {
		return fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(raw))
	}
	if e.Message != "" {
		return fmt.Errorf("%s: %s (%s)", resp.Status, e.Error, e.Message)
	}
	return fmt.Errorf("%s: %s", resp.Status, e.Error)
}
