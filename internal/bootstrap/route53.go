package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"chordring/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
)

// route53Bootstrap uses a hosted zone's TXT record as a shared
// membership directory: each live node UPSERTs its own address into
// the record's value set on Register, and lists the full value set on
// Discover. This trades a real service-discovery backend (Consul,
// etcd) for one already present in the teacher's dependency stack.
type route53Bootstrap struct {
	client     *route53.Client
	zoneID     string
	recordName string
	ttl        int64
}

// NewRoute53Bootstrap builds a Bootstrap backed by an AWS Route53
// hosted zone, loading AWS credentials from the default provider
// chain (environment, shared config, instance role).
func NewRoute53Bootstrap(cfg config.Route53Config) (Bootstrap, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, fmt.Errorf("route53 bootstrap: load aws config: %w", err)
	}
	return &route53Bootstrap{
		client:     route53.NewFromConfig(awsCfg),
		zoneID:     cfg.HostedZoneID,
		recordName: cfg.RecordNamePrefix,
		ttl:        cfg.TTL,
	}, nil
}

func (b *route53Bootstrap) Discover(ctx context.Context) ([]string, error) {
	out, err := b.client.ListResourceRecordSets(ctx, &route53.ListResourceRecordSetsInput{
		HostedZoneId:    aws.String(b.zoneID),
		StartRecordName: aws.String(dnsName(b.recordName)),
		StartRecordType: types.RRTypeTxt,
		MaxItems:        aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("route53 bootstrap: list record sets: %w", err)
	}

	for _, rrs := range out.ResourceRecordSets {
		if aws.ToString(rrs.Name) != dnsName(b.recordName) || rrs.Type != types.RRTypeTxt {
			continue
		}
		peers := make([]string, 0, len(rrs.ResourceRecords))
		for _, rr := range rrs.ResourceRecords {
			addr := strings.Trim(aws.ToString(rr.Value), "\"")
			if addr != "" {
				peers = append(peers, addr)
			}
		}
		return peers, nil
	}
	return nil, nil
}

func (b *route53Bootstrap) Register(ctx context.Context, addr string) error {
	peers, err := b.Discover(ctx)
	if err != nil {
		return err
	}
	peers = appendUnique(peers, addr)
	return b.upsert(ctx, peers)
}

func (b *route53Bootstrap) Deregister(ctx context.Context, addr string) error {
	peers, err := b.Discover(ctx)
	if err != nil {
		return err
	}
	peers = removeAddr(peers, addr)
	if len(peers) == 0 {
		return b.delete(ctx)
	}
	return b.upsert(ctx, peers)
}

// existingRecordSet fetches the record set as Route53 currently has it,
// for echoing back verbatim in a delete change (the API rejects a
// DELETE whose ResourceRecords/TTL don't exactly match what's stored).
func (b *route53Bootstrap) existingRecordSet(ctx context.Context) (*types.ResourceRecordSet, error) {
	out, err := b.client.ListResourceRecordSets(ctx, &route53.ListResourceRecordSetsInput{
		HostedZoneId:    aws.String(b.zoneID),
		StartRecordName: aws.String(dnsName(b.recordName)),
		StartRecordType: types.RRTypeTxt,
		MaxItems:        aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("route53 bootstrap: list record sets: %w", err)
	}
	for _, rrs := range out.ResourceRecordSets {
		if aws.ToString(rrs.Name) != dnsName(b.recordName) || rrs.Type != types.RRTypeTxt {
			continue
		}
		return &rrs, nil
	}
	return nil, nil
}

func (b *route53Bootstrap) upsert(ctx context.Context, peers []string) error {
	records := make([]types.ResourceRecord, 0, len(peers))
	for _, p := range peers {
		records = append(records, types.ResourceRecord{Value: aws.String(fmt.Sprintf("%q", p))})
	}
	_, err := b.client.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(b.zoneID),
		ChangeBatch: &types.ChangeBatch{
			Changes: []types.Change{{
				Action: types.ChangeActionUpsert,
				ResourceRecordSet: &types.ResourceRecordSet{
					Name:            aws.String(dnsName(b.recordName)),
					Type:            types.RRTypeTxt,
					TTL:             aws.Int64(b.ttl),
					ResourceRecords: records,
				},
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("route53 bootstrap: upsert record set: %w", err)
	}
	return nil
}

// delete removes the record set entirely. Route53 rejects a DELETE
// change unless it echoes the record set's current Name/Type/TTL and
// ResourceRecords exactly, so it re-fetches them first rather than
// reconstructing them from the already-trimmed peer list.
func (b *route53Bootstrap) delete(ctx context.Context) error {
	existing, err := b.existingRecordSet(ctx)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}

	_, err = b.client.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(b.zoneID),
		ChangeBatch: &types.ChangeBatch{
			Changes: []types.Change{{
				Action:            types.ChangeActionDelete,
				ResourceRecordSet: existing,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("route53 bootstrap: delete record set: %w", err)
	}
	return nil
}

func dnsName(prefix string) string {
	if strings.HasSuffix(prefix, ".") {
		return prefix
	}
	return prefix + "."
}

func appendUnique(peers []string, addr string) []string {
	for _, p := range peers {
		if p == addr {
			return peers
		}
	}
	return append(peers, addr)
}

func removeAddr(peers []string, addr string) []string {
	out := peers[:0]
	for _, p := range peers {
		if p != addr {
			out = append(out, p)
		}
	}
	return out
}

