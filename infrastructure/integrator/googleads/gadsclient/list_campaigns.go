package gadsclient

import (
	"context"

	gadsdomain "github.com/toastdai/googleadsdashboard/infrastructure/integrator/googleads/domain"
)

const campaignsQuery = `
	SELECT
		campaign.id,
		campaign.name,
		campaign.status,
		campaign.advertising_channel_type
	FROM campaign
	WHERE campaign.status != 'REMOVED'
	ORDER BY campaign.name`

func (c *GoogleAdsClient) ListCampaignsByCustomerID(ctx context.Context, customerID string) ([]*gadsdomain.CampaignRecord, error) {
	rows, err := c.search(ctx, NormalizeCustomerID(customerID), campaignsQuery)
	if err != nil {
		return nil, err
	}

	campaigns := make([]*gadsdomain.CampaignRecord, 0, len(rows))
	for _, row := range rows {
		if row.Campaign == nil || row.Campaign.ID == "" {
			continue
		}

		campaigns = append(campaigns, &gadsdomain.CampaignRecord{
			ExternalID:  row.Campaign.ID,
			Name:        row.Campaign.Name,
			Status:      row.Campaign.Status,
			ChannelType: row.Campaign.AdvertisingChannelType,
		})
	}

	return campaigns, nil
}
