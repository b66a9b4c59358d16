package registry

import (
	"time"

	"github.com/chainjobs-ke/go-scraper/internal/domain"
)

// FallbackJobs returns the hand-authored records substituted when every
// live source fails or yields nothing. This is a deliberate degraded-mode
// path so the board is never empty; callers must log when it is used.
func FallbackJobs() []*domain.JobRecord {
	now := time.Now()
	return []*domain.JobRecord{
		{
			Title:          "Supply Chain Management Trainee",
			Company:        "Kenya Breweries Limited",
			Location:       "Nairobi, Kenya",
			JobType:        domain.JobTypeFullTime,
			Description:    "Graduate trainee program covering demand planning, procurement and distribution operations across the East Africa region.",
			JobURL:         "https://www.brightermonday.co.ke/jobs/supply-chain-logistics",
			Source:         "fallback",
			SourcePostedAt: now,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			Title:          "Procurement Officer",
			Company:        "Mombasa Port Authority",
			Location:       "Mombasa, Kenya",
			JobType:        domain.JobTypeFullTime,
			Description:    "Responsible for tendering, supplier evaluation and contract management for port logistics services.",
			JobURL:         "https://www.myjobmag.co.ke/jobs-by-field/logistics-transportation",
			Source:         "fallback",
			SourcePostedAt: now,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			Title:          "Warehouse Operations Supervisor",
			Company:        "Twiga Foods",
			Location:       "Nairobi, Kenya",
			JobType:        domain.JobTypeFullTime,
			Description:    "Supervise inbound and outbound warehouse operations, inventory accuracy and a team of fulfillment associates.",
			JobURL:         "https://www.kenyajoblink.com/jobs/category/procurement-supply-chain",
			Source:         "fallback",
			SourcePostedAt: now,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			Title:          "Logistics Coordinator - FMCG Distribution",
			Company:        "Unilever Kenya",
			Location:       "Nairobi, Kenya",
			JobType:        domain.JobTypeContract,
			Description:    "Coordinate transport planning, fleet scheduling and third-party carrier performance for national distribution.",
			JobURL:         "https://jobwebkenya.com/job-category/supply-chain-jobs/",
			Source:         "fallback",
			SourcePostedAt: now,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
	}
}
