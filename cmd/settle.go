package cmd

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"settlex/money"
	"settlex/netting"
	"settlex/split"
)

var inputPath string
var outputPath string

func settleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "settle",
		Short:   "net a CSV of expenses into a settlement plan",
		Long:    `accept two CSV file paths, one for input and one for output. The input lists expenses (payer, total amount, participant names); the output is the netted list of settling payments.`,
		Example: `settlex settle --input expenses.csv --output plan.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" || outputPath == "" {
				return cmd.Help()
			}

			inputFile, err := os.Open(inputPath)
			if err != nil {
				return err
			}
			defer func(inputFile *os.File) {
				err := inputFile.Close()
				if err != nil {
					log.Fatalf("Failed to close input file: %v", err)
				}
			}(inputFile)

			csvContent, err := csv.NewReader(inputFile).ReadAll()
			if err != nil {
				return err
			}

			debts, err := ParseCSVToRawDebts(csvContent)
			if err != nil {
				return fmt.Errorf("failed to parse CSV: %w", err)
			}
			if len(debts) == 0 {
				return fmt.Errorf("no valid expenses found in the CSV")
			}

			payments := netting.ComputeNetPayments(debts)

			outputFile, err := os.Create(outputPath)
			if err != nil {
				return err
			}
			defer func(outputFile *os.File) {
				err := outputFile.Close()
				if err != nil {
					log.Fatalf("Failed to close output file: %v", err)
				}
			}(outputFile)

			writer := csv.NewWriter(outputFile)
			if err := writer.Write([]string{"from", "to", "amount"}); err != nil {
				return err
			}
			for _, p := range payments {
				if err := writer.Write([]string{p.From, p.To, p.Amount}); err != nil {
					return err
				}
			}
			writer.Flush()
			if err := writer.Error(); err != nil {
				return err
			}

			fmt.Printf("Netted %d debts into %d payments.\n", len(debts), len(payments))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "csv input file path (required)")
	err := cmd.MarkFlagRequired("input")
	if err != nil {
		log.Fatal(err)
		return nil
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "csv output file path (required)")
	err = cmd.MarkFlagRequired("output")
	if err != nil {
		log.Fatal(err)
		return nil
	}

	return cmd
}

// ParseCSVToRawDebts parses CSV rows of "payer, total amount, participant
// names" into the pairwise debts each expense implies. Participants are
// comma-separated and include the payer; each expense is split equally.
func ParseCSVToRawDebts(csvContent [][]string) ([]netting.RawDebt, error) {
	if len(csvContent) == 0 {
		return nil, fmt.Errorf("CSV is empty")
	}

	// skip the header row
	dataRows := csvContent[1:]

	var debts []netting.RawDebt
	for i, row := range dataRows {
		if len(row) != 3 {
			return nil, fmt.Errorf("row %d: expected 3 columns, but got %d", i+2, len(row))
		}

		payerName := strings.TrimSpace(row[0])
		if !money.IsValidAmountString(strings.TrimSpace(row[1])) {
			return nil, fmt.Errorf("row %d: invalid amount %q", i+2, row[1])
		}
		total, _ := money.Parse(strings.TrimSpace(row[1]))

		names := strings.Split(row[2], ",")
		members := make([]split.Member, 0, len(names))
		var payerID uuid.UUID
		for _, name := range names {
			member := split.Member{ID: uuid.New(), Name: strings.TrimSpace(name)}
			if member.Name == payerName && payerID == uuid.Nil {
				payerID = member.ID
			}
			members = append(members, member)
		}
		if payerID == uuid.Nil {
			return nil, fmt.Errorf("row %d: payer %q is not among the participants", i+2, payerName)
		}

		for _, share := range split.EqualSplit(total, members, payerID) {
			amount, err := money.Parse(share.Amount)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+2, err)
			}
			debts = append(debts, netting.RawDebt{
				From:   share.Name,
				To:     payerName,
				Amount: amount,
			})
		}
	}

	return debts, nil
}
