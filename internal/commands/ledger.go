package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/policy"
	"alcyxob/gym-portal/internal/repository"
	"alcyxob/gym-portal/internal/repository/mongo"
	"alcyxob/gym-portal/internal/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
)

var (
	grantMember string
	grantAdmin  string
	grantCount  int

	purchaseEmail    string
	purchaseProducts []string
)

var grantSessionsCmd = &cobra.Command{
	Use:   "grant-sessions",
	Short: "Add PT session credits to a member",
	Long: `Add PT session credits to a member outside of a payment, for example
as a goodwill gesture. The grant is recorded against the acting admin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if grantMember == "" || grantAdmin == "" {
			return fmt.Errorf("--member and --admin are required")
		}

		return withDatabase(func(ctx context.Context, db *mongodriver.Database) error {
			userRepo := mongo.NewMongoUserRepository(db)

			actor, err := lookupUser(ctx, userRepo, grantAdmin)
			if err != nil {
				return err
			}
			if actor.Role != domain.RoleAdmin {
				return fmt.Errorf("%s is not an admin", grantAdmin)
			}
			member, err := lookupUser(ctx, userRepo, grantMember)
			if err != nil {
				return err
			}

			ledger := service.NewLedgerService(userRepo, globalConfig.Payments.Catalog())
			updated, err := ledger.GrantSessions(ctx, policy.Principal{ID: actor.ID, Role: actor.Role}, member.ID, grantCount)
			if err != nil {
				return err
			}
			color.Green("%s now has %d PT sessions\n", updated.Email, updated.PTBalance())
			return nil
		})
	},
}

var applyPurchaseCmd = &cobra.Command{
	Use:   "apply-purchase",
	Short: "Apply a completed purchase by hand",
	Long: `Apply the effects of a completed checkout as if the payment webhook had
delivered it. Use this when a webhook was lost. Running it twice applies the
purchase twice.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if purchaseEmail == "" || len(purchaseProducts) == 0 {
			return fmt.Errorf("--email and at least one --product are required")
		}

		return withDatabase(func(ctx context.Context, db *mongodriver.Database) error {
			ledger := service.NewLedgerService(mongo.NewMongoUserRepository(db), globalConfig.Payments.Catalog())
			result, err := ledger.OnPaymentCompleted(ctx, purchaseEmail, purchaseProducts)
			if err != nil {
				return err
			}
			if result.Subscription != nil {
				color.Green("Subscription: %s until %s\n", result.Subscription.Tier, result.Subscription.EndDate.Format("2006-01-02"))
			}
			if result.SessionsAdded > 0 {
				color.Green("PT sessions added: %d\n", result.SessionsAdded)
			}
			for _, p := range result.SkippedProducts {
				color.Yellow("Skipped unknown product: %s\n", p)
			}
			return nil
		})
	},
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the product catalog used to interpret payments",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(globalConfig.Payments.Products) == 0 {
			fmt.Println("No products configured, showing the built-in catalog:")
			fmt.Println()
		}
		catalog := globalConfig.Payments.Catalog()

		ids := make([]string, 0, len(catalog))
		for id := range catalog {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			effect := catalog[id]
			switch {
			case effect.IsSubscription():
				color.Cyan("\t%-28s %s for %d month(s)\n", id, effect.Tier, effect.Months)
			case effect.IsSessionPack():
				color.Magenta("\t%-28s %d PT session(s)\n", id, effect.Sessions)
			default:
				color.Red("\t%-28s no effect (check configuration)\n", id)
			}
		}
		return nil
	},
}

func lookupUser(ctx context.Context, userRepo repository.UserRepository, email string) (*domain.User, error) {
	user, err := userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("no account for %s", email)
	}
	return user, err
}

func init() {
	grantSessionsCmd.Flags().StringVar(&grantMember, "member", "", "email of the member receiving the credits")
	grantSessionsCmd.Flags().StringVar(&grantAdmin, "admin", "", "email of the admin making the grant")
	grantSessionsCmd.Flags().IntVarP(&grantCount, "count", "n", 1, "number of sessions to add")

	applyPurchaseCmd.Flags().StringVar(&purchaseEmail, "email", "", "customer email on the checkout")
	applyPurchaseCmd.Flags().StringSliceVarP(&purchaseProducts, "product", "p", nil, "purchased product id (repeatable)")
}
