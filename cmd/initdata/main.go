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

	"github.com/brianvoe/gofakeit/v6"
)

// ----------------------------------------------------------------------------
// Config ---------------------------------------------------------------------
var (
	baseURL  = flag.String("url", env("API_BASE_URL", "http://localhost:8080"), "Server base URL")
	nNotes   = flag.Int("n", envInt("COUNT", 200), "How many notes to create")
	nFolders = flag.Int("folders", envInt("FOLDER_COUNT", 3), "How many extra folders to create")
)

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		i, err := fmt.Sscan(v, &i)
		if err != nil {
			return def
		}
		if i > 0 {
			return i
		}
	}
	return def
}

var noteColors = []string{"none", "red", "orange", "yellow", "green", "blue", "purple"}

// ----------------------------------------------------------------------------
// HTTP helpers ---------------------------------------------------------------
func postJSON(path string, body any) (*http.Response, error) {
	b, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, *baseURL+path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return http.DefaultClient.Do(req)
}

func must(body io.ReadCloser) []byte {
	defer body.Close()
	data, _ := io.ReadAll(body)
	return data
}

// ----------------------------------------------------------------------------
// Main -----------------------------------------------------------------------
func main() {
	flag.Parse()
	gofakeit.Seed(time.Now().UnixNano())

	fmt.Printf("Seeding %d notes across %d extra folders on %s\n", *nNotes, *nFolders, *baseURL)

	folderIDs, err := createFolders(*nFolders)
	if err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}

	if err := createNotes(folderIDs, *nNotes); err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}

	if err := recordActivity(); err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}

	fmt.Println("✔ done")
}

// ----------------------------------------------------------------------------
// Step 1 – create folders -----------------------------------------------------
func createFolders(total int) ([]string, error) {
	ids := make([]string, 0, total)

	for i := 0; i < total; i++ {
		folder := map[string]any{
			"name":  gofakeit.BuzzWord() + " " + gofakeit.NounAbstract(),
			"icon":  "folder",
			"color": gofakeit.HexColor(),
		}

		resp, err := postJSON("/api/v1/folders", folder)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusCreated {
			return nil, fmt.Errorf("create folder %d failed (%d): %s", i+1, resp.StatusCode, must(resp.Body))
		}

		var r struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(must(resp.Body), &r)
		ids = append(ids, r.ID)
	}

	fmt.Printf("• created %d folders\n", len(ids))
	return ids, nil
}

// ----------------------------------------------------------------------------
// Step 2 – create notes -------------------------------------------------------
func createNotes(folderIDs []string, total int) error {
	for i := 1; i <= total; i++ {
		note := map[string]any{
			"title":    gofakeit.Sentence(3),
			"content":  gofakeit.Paragraph(1, 3, 40, " "),
			"noteType": "text",
			"color":    gofakeit.RandomString(noteColors),
			"isPinned": gofakeit.Bool() && i%10 == 0,
		}
		if len(folderIDs) > 0 && gofakeit.Bool() {
			note["folderId"] = gofakeit.RandomString(folderIDs)
		}

		resp, err := postJSON("/api/v1/notes", note)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusCreated {
			return fmt.Errorf("create note %d failed (%d): %s", i, resp.StatusCode, must(resp.Body))
		}

		var r struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(must(resp.Body), &r)

		// A sprinkle of favorites and trashed notes makes the smart views
		// worth looking at.
		if i%7 == 0 {
			if resp, err := postJSON("/api/v1/notes/"+r.ID+"/favorite", nil); err == nil {
				_ = must(resp.Body)
			}
		}
		if i%13 == 0 {
			req, _ := http.NewRequest(http.MethodDelete, *baseURL+"/api/v1/notes/"+r.ID, nil)
			if resp, err := http.DefaultClient.Do(req); err == nil {
				_ = must(resp.Body)
			}
		}

		if i%50 == 0 || i == total {
			fmt.Printf("  … %d/%d\n", i, total)
		}
	}
	return nil
}

// ----------------------------------------------------------------------------
// Step 3 – mark today active --------------------------------------------------
func recordActivity() error {
	resp, err := postJSON("/api/v1/streak/activity", nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("record activity failed (%d): %s", resp.StatusCode, must(resp.Body))
	}
	fmt.Println("• recorded streak activity")
	return nil
}
