package gateway

type transactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type customerDetails struct {
	FirstName string `json:"first_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type itemDetail struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

type bankTransferParams struct {
	Bank string `json:"bank"`
}

type echannelParams struct {
	BillInfo1 string `json:"bill_info1"`
	BillInfo2 string `json:"bill_info2"`
}

type eWalletParams struct {
	EnableCallback bool   `json:"enable_callback,omitempty"`
	CallbackURL    string `json:"callback_url,omitempty"`
}

type qrisParams struct {
	Acquirer string `json:"acquirer,omitempty"`
}

type creditCardParams struct {
	TokenID        string `json:"token_id"`
	Authentication bool   `json:"authentication"`
}

type chargeRequest struct {
	PaymentType        string              `json:"payment_type"`
	TransactionDetails transactionDetails  `json:"transaction_details"`
	CustomerDetails    *customerDetails    `json:"customer_details,omitempty"`
	ItemDetails        []itemDetail        `json:"item_details,omitempty"`
	BankTransfer       *bankTransferParams `json:"bank_transfer,omitempty"`
	Echannel           *echannelParams     `json:"echannel,omitempty"`
	Gopay              *eWalletParams      `json:"gopay,omitempty"`
	ShopeePay          *eWalletParams      `json:"shopeepay,omitempty"`
	Qris               *qrisParams         `json:"qris,omitempty"`
	CreditCard         *creditCardParams   `json:"credit_card,omitempty"`
}

type vaNumber struct {
	Bank     string `json:"bank"`
	VANumber string `json:"va_number"`
}

type action struct {
	Name   string `json:"name"`
	Method string `json:"method"`
	URL    string `json:"url"`
}

// apiStatus is embedded by every response. Midtrans reports failures in the body
// status_code even when the HTTP status is 200.
type apiStatus struct {
	StatusCode    string `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

func (s apiStatus) status() apiStatus { return s }

type chargeResponse struct {
	apiStatus
	TransactionID     string     `json:"transaction_id"`
	OrderID           string     `json:"order_id"`
	GrossAmount       string     `json:"gross_amount"`
	PaymentType       string     `json:"payment_type"`
	TransactionStatus string     `json:"transaction_status"`
	FraudStatus       string     `json:"fraud_status"`
	VANumbers         []vaNumber `json:"va_numbers"`
	PermataVANumber   string     `json:"permata_va_number"`
	BillKey           string     `json:"bill_key"`
	BillerCode        string     `json:"biller_code"`
	Actions           []action   `json:"actions"`
	RedirectURL       string     `json:"redirect_url"`
	QRString          string     `json:"qr_string"`
}

type statusResponse struct {
	apiStatus
	TransactionID     string `json:"transaction_id"`
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	GrossAmount       string `json:"gross_amount"`
}
