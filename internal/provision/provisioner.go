// Package provision renders the infrastructure an agent's tier entitles it
// to as a directive. It never calls a provisioning API.
package provision

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/rogers-f/tierforge/internal/catalog"
	"github.com/rogers-f/tierforge/internal/domain"
)

// DefaultTemplate renders a provision-instance command line. The accelerator
// clause is emitted only for tiers with accelerators.
const DefaultTemplate = `provision-instance --agent {{.AgentID}} --tier {{.Tier}}` +
	` --cpus {{.Hardware.CPUs}} --memory-gb {{.Hardware.MemoryGB}} --storage-gb {{.Hardware.StorageGB}}` +
	` --max-instances {{.Hardware.MaxInstances}}` +
	`{{if .Hardware.HasAccelerator}} --accelerator type={{.Hardware.AcceleratorType}},count={{.Hardware.AcceleratorCount}}{{end}}` +
	` --hourly-cost {{printf "%.2f" .Hardware.HourlyCostUSD}}`

// AgentReader loads an agent by ID.
type AgentReader interface {
	GetAgent(ctx context.Context, agentID string) (*domain.Agent, error)
}

// Provisioner maps an agent's current tier to its hardware and command.
type Provisioner struct {
	Agents   AgentReader
	Catalog  *catalog.Catalog
	Template *template.Template
}

// NewProvisioner parses text (DefaultTemplate when empty) and returns a
// Provisioner. A malformed template is a configuration error.
func NewProvisioner(agents AgentReader, cat *catalog.Catalog, text string) (*Provisioner, error) {
	if text == "" {
		text = DefaultTemplate
	}
	tmpl, err := template.New("provision").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, domain.Detail(domain.ErrConfigInvalid, "provision_template: %v", err)
	}
	return &Provisioner{Agents: agents, Catalog: cat, Template: tmpl}, nil
}

// Plan returns the provisioning directive for the agent's stored tier.
func (p *Provisioner) Plan(ctx context.Context, agentID string) (*domain.ProvisioningDirective, error) {
	agent, err := p.Agents.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	def, err := p.Catalog.ByRank(agent.CurrentTier)
	if err != nil {
		return nil, err
	}

	d := &domain.ProvisioningDirective{
		AgentID:  agent.AgentID,
		Tier:     def.Name,
		Label:    def.Label,
		Hardware: def.Hardware,
	}
	var buf bytes.Buffer
	if err := p.Template.Execute(&buf, d); err != nil {
		return nil, fmt.Errorf("render provisioning command: %w", err)
	}
	d.Command = buf.String()
	return d, nil
}
