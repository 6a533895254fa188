package paypal

import "time"

const (
	APIBaseSandbox = "https://api-m.sandbox.paypal.com"
	APIBaseLive    = "https://api-m.paypal.com"

	EnvironmentSandbox = "sandbox"
	EnvironmentLive    = "live"

	// EventCaptureCompleted is the only event that settles a tip.
	EventCaptureCompleted = "PAYMENT.CAPTURE.COMPLETED"

	// tokenSkew renews an access token this long before PayPal expires it
	tokenSkew = time.Minute

	requestTimeout = 15 * time.Second
)

// Transmission headers PayPal signs each webhook delivery with.
const (
	HeaderAuthAlgo         = "Paypal-Auth-Algo"
	HeaderCertURL          = "Paypal-Cert-Url"
	HeaderTransmissionID   = "Paypal-Transmission-Id"
	HeaderTransmissionSig  = "Paypal-Transmission-Sig"
	HeaderTransmissionTime = "Paypal-Transmission-Time"
)
