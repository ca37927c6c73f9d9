package cli

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-lending-go/core"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type bookView struct {
	ISBN     string `json:"isbn"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Category string `json:"category"`
	OnLoan   bool   `json:"on_loan"`
}

type loansView struct {
	UserID string     `json:"user_id"`
	ISBNs  []string   `json:"isbns"`
	Books  []bookView `json:"books"`
}

type inconsistencyView struct {
	Kind    string   `json:"kind"`
	ISBN    string   `json:"isbn"`
	UserIDs []string `json:"user_ids"`
}

func toBookViews(books []core.Book) []bookView {
	views := make([]bookView, 0, len(books))
	for _, b := range books {
		views = append(views, bookView{
			ISBN:     b.ISBN,
			Title:    b.Title,
			Author:   b.Author,
			Category: b.Category,
			OnLoan:   b.OnLoan,
		})
	}

	return views
}

func toInconsistencyViews(found []core.Inconsistency) []inconsistencyView {
	views := make([]inconsistencyView, 0, len(found))
	for _, f := range found {
		userIDs := f.UserIDs
		if userIDs == nil {
			userIDs = []string{}
		}

		views = append(views, inconsistencyView{Kind: string(f.Kind), ISBN: f.ISBN, UserIDs: userIDs})
	}

	return views
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func writeBooks(out io.Writer, books []core.Book) error {
	if len(books) == 0 {
		_, err := fmt.Fprintln(out, "no books")
		return err
	}

	for _, b := range books {
		if _, err := fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n", b.ISBN, b.Title, b.Author, b.Category, b.Status()); err != nil {
			return err
		}
	}

	return nil
}
