package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"ridepoint/pkg/model"
)

type VehicleClient struct {
	httpClient *HttpClient
}

func NewVehicleClient(baseUrl string) *VehicleClient {
	return &VehicleClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *VehicleClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/vehicles", body)
}

func (c *VehicleClient) CreateRaw(rawBody []byte) (*Response, error) {
	return c.httpClient.POSTRaw("/api/v1/vehicles", rawBody)
}

func (c *VehicleClient) GetAll(limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/vehicles?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GET(path)
}

func (c *VehicleClient) GetByID(id string) (*Response, error) {
	path := "/api/v1/vehicles/id/" + url.PathEscape(id)
	return c.httpClient.GET(path)
}

func (c *VehicleClient) GetByOwner(ownerID string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	q.Set("owner_id", ownerID)
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))

	path := "/api/v1/vehicles/search?" + q.Encode()
	return c.httpClient.GET(path)
}

func (c *VehicleClient) Update(id string, body any) (*Response, error) {
	path := "/api/v1/vehicles/id/" + url.PathEscape(id)
	return c.httpClient.PATCH(path, body)
}

func (c *VehicleClient) UpdateRaw(id string, rawBody []byte) (*Response, error) {
	path := "/api/v1/vehicles/id/" + url.PathEscape(id)
	return c.httpClient.PATCHRaw(path, rawBody)
}

func (c *VehicleClient) Availability(id, startDate, endDate string) (*Response, error) {
	q := url.Values{}
	q.Set("start_date", startDate)
	q.Set("end_date", endDate)

	path := "/api/v1/vehicles/id/" + url.PathEscape(id) + "/availability?" + q.Encode()
	return c.httpClient.GET(path)
}

func (c *VehicleClient) DecodeVehicle(resp *Response) (*model.Vehicle, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode vehicle wrapper:\n%+v\n%s", resp.ToString(), err)
	}

	var vehicle model.Vehicle
	if err := json.Unmarshal(wrapper.Data, &vehicle); err != nil {
		return nil, fmt.Errorf("could not decode vehicle json:\n%+v\n%s", resp.ToString(), err)
	}

	return &vehicle, nil
}

func (c *VehicleClient) DecodeVehicles(resp *Response) ([]*model.Vehicle, *Metadata, error) {
	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp:\n%+v\n%s", resp.ToString(), err)
	}

	var vehicles []*model.Vehicle
	if err := json.Unmarshal(wrapper.Data, &vehicles); err != nil {
		return nil, nil, fmt.Errorf("could not decode vehicle list:\n%+v\n%s", resp.ToString(), err)
	}

	metadata := &Metadata{
		TotalCount: wrapper.TotalCount,
		Limit:      wrapper.Limit,
		Offset:     wrapper.Offset,
	}

	return vehicles, metadata, nil
}

func (c *VehicleClient) DecodeAvailability(resp *Response) (*model.Availability, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode availability wrapper:\n%+v\n%s", resp.ToString(), err)
	}

	var availability model.Availability
	if err := json.Unmarshal(wrapper.Data, &availability); err != nil {
		return nil, fmt.Errorf("could not decode availability json:\n%+v\n%s", resp.ToString(), err)
	}

	return &availability, nil
}
