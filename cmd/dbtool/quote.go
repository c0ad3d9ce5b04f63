package main

import (
	"fmt"
	"parcel-booking-service/internal/domain"
	"parcel-booking-service/internal/services"
	"strings"

	"github.com/spf13/cobra"
)

func newQuoteCmd() *cobra.Command {
	var parcelType, weight, from, to string

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a parcel with the live tariff",
		Example: `  dbtool quote --type document --from Dhaka --to Dhaka
  dbtool quote --type non-document --weight 3.2 --from Dhaka --to Sylhet`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pt, err := domain.ParseParcelType(parcelType)
			if err != nil {
				return err
			}

			q := domain.Quote{
				ParcelType:          pt,
				WeightKg:            services.ParseWeight(weight),
				OriginDistrict:      strings.TrimSpace(from),
				DestinationDistrict: strings.TrimSpace(to),
			}
			est := services.EstimateCost(q)

			out := cmd.OutOrStdout()
			for _, li := range est.Breakdown {
				fmt.Fprintf(out, "%-24s %6d\n", li.Label, li.Amount)
			}
			fmt.Fprintf(out, "%-24s %6d\n", "total", est.Cost)
			return nil
		},
	}
	cmd.Flags().StringVar(&parcelType, "type", "non-document", "parcel type: document or non-document")
	cmd.Flags().StringVar(&weight, "weight", "", "weight in kg")
	cmd.Flags().StringVar(&from, "from", "", "sender district")
	cmd.Flags().StringVar(&to, "to", "", "receiver district")
	return cmd
}
