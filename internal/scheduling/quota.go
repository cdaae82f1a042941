package scheduling

import "meetingscheduler/internal/domain"

// CountsAgainstQuota reports whether a request in status s consumes quota.
// Only cancelled requests are given back; rejected ones still count so that
// spamming speakers with requests is not free.
func CountsAgainstQuota(s domain.MeetingStatus) bool {
	return s != domain.MeetingCancelled
}

// ComputeQuota derives a requester's quota from their tier limits and bookings.
// Bookings belonging to other requesters are ignored.
func ComputeQuota(requesterID, tier string, limits domain.TierLimits, bookings []*domain.MeetingRequest) domain.QuotaState {
	q := domain.QuotaState{
		Tier:        tier,
		MaxRequests: limits.MaxRequests,
		MaxBoost:    limits.MaxBoost,
	}
	for _, m := range bookings {
		if m.RequesterID != requesterID || !CountsAgainstQuota(m.Status) {
			continue
		}
		q.TotalRequests++
		q.UsedBoost += m.BoostAmount
	}
	q.RemainingRequests = max(q.MaxRequests-q.TotalRequests, 0)
	q.RemainingBoost = max(q.MaxBoost-q.UsedBoost, 0)
	return q
}
