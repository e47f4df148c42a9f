package cli

import (
	"context"
	"fmt"

	"github.com/smforson1/book-bite-sub000/internal/client/models"
)

// Review captures a hotel or restaurant rating locally and queues it for
// sync.
func (a *App) Review(ctx context.Context) error {
	user := a.sess.CurrentUser(ctx)
	if user == nil {
		fmt.Fprintln(a.out, "Log in first")
		return nil
	}

	kind, err := GetSimpleText(a.reader, "Review a hotel or a restaurant? (h/r)", a.out)
	if err != nil {
		return err
	}
	target := models.ReviewTargetHotel
	if kind == "r" || kind == "restaurant" {
		target = models.ReviewTargetRestaurant
	}

	targetID, err := GetSimpleText(a.reader, "Target id", a.out)
	if err != nil {
		return err
	}
	rating, err := GetInt(a.reader, "Rating (1-5)", a.out)
	if err != nil || rating > 5 {
		fmt.Fprintln(a.out, "Rating must be 1-5")
		return err
	}
	comment, err := GetSimpleText(a.reader, "Comment", a.out)
	if err != nil {
		return err
	}

	review := models.NewReview(user.ID, targetID, target, rating, comment)
	reviews := append(a.store.Reviews(ctx), review)
	if !a.store.SaveReviews(ctx, reviews) {
		return fmt.Errorf("failed to save review")
	}

	fmt.Fprintf(a.out, "Review %s queued for sync\n", review.ID)
	if a.engine.Online() {
		go a.engine.SyncNow(context.Background())
	}
	return nil
}
