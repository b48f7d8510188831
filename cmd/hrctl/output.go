package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/axxaxinx/user-management-final-123/internal/domain/models"
)

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func printKV(rows [][2]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
	}
	_ = w.Flush()
}

func printTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Println("no results")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

func formatID(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func formatMaybeUint(v *uint) string {
	if v == nil {
		return "-"
	}
	return formatID(*v)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func printAccounts(items []models.Account) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			formatID(item.ID),
			item.Email,
			strings.TrimSpace(item.FirstName + " " + item.LastName),
			string(item.Role),
			strconv.FormatBool(item.IsVerified()),
		})
	}
	printTable([]string{"ID", "EMAIL", "NAME", "ROLE", "VERIFIED"}, rows)
}

func printDepartments(items []models.Department) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			formatID(item.ID),
			item.Name,
			strconv.FormatInt(item.EmployeeCount, 10),
			item.Description,
		})
	}
	printTable([]string{"ID", "NAME", "EMPLOYEES", "DESCRIPTION"}, rows)
}

func printRequests(items []models.Request) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			formatID(item.ID),
			string(item.Type),
			string(item.Status),
			formatMaybeUint(item.EmployeeID),
			strconv.Itoa(len(item.Items)),
			formatTime(item.CreatedAt),
		})
	}
	printTable([]string{"ID", "TYPE", "STATUS", "EMPLOYEE", "ITEMS", "CREATED_AT"}, rows)
}

func printRequest(item *models.Request) {
	printKV([][2]string{
		{"id", formatID(item.ID)},
		{"type", string(item.Type)},
		{"status", string(item.Status)},
		{"employee", formatMaybeUint(item.EmployeeID)},
		{"description", item.Description},
		{"created_at", formatTime(item.CreatedAt)},
	})
	if len(item.Items) == 0 {
		return
	}
	fmt.Println()
	rows := make([][]string, 0, len(item.Items))
	for _, it := range item.Items {
		rows = append(rows, []string{formatID(it.ID), it.Name, strconv.Itoa(it.Quantity), it.Details})
	}
	printTable([]string{"ITEM", "NAME", "QTY", "DETAILS"}, rows)
}
