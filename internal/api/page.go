package api

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Kestrel</title>
    <meta name="description" content="Fraud analytics over segmented customer data">
    <link rel="icon" href="data:image/svg+xml,<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'><text y='.9em' font-size='90'>&#x1F985;</text></svg>">
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        :root {
            --bg: #09090b;
            --bg-subtle: #18181b;
            --border: #27272a;
            --text: #fafafa;
            --text-secondary: #a1a1aa;
            --text-tertiary: #52525b;
            --accent: #3b82f6;
            --green: #22c55e;
            --amber: #f59e0b;
            --red: #ef4444;
        }

        body {
            font-family: -apple-system, 'Segoe UI', sans-serif;
            background: var(--bg);
            color: var(--text);
            min-height: 100vh;
            font-size: 14px;
            line-height: 1.5;
        }

        .container { max-width: 1280px; margin: 0 auto; padding: 0 24px; }

        header {
            border-bottom: 1px solid var(--border);
            padding: 16px 0;
            position: sticky;
            top: 0;
            background: var(--bg);
            z-index: 100;
        }
        .header-inner { display: flex; justify-content: space-between; align-items: center; }
        .logo { font-weight: 600; font-size: 16px; }
        .logo span { color: var(--accent); }
        nav { display: flex; gap: 24px; }
        nav a {
            color: var(--text-secondary);
            text-decoration: none;
            font-size: 13px;
            cursor: pointer;
        }
        nav a:hover, nav a.active { color: var(--text); }

        .tab { display: none; padding: 32px 0; }
        .tab.active { display: block; }

        .filters {
            display: flex;
            gap: 12px;
            flex-wrap: wrap;
            align-items: flex-end;
            padding: 16px;
            background: var(--bg-subtle);
            border: 1px solid var(--border);
            border-radius: 8px;
            margin-bottom: 24px;
        }
        .field { display: flex; flex-direction: column; gap: 4px; }
        .field label { font-size: 11px; text-transform: uppercase; color: var(--text-tertiary); }
        .field input, .field select {
            background: var(--bg);
            border: 1px solid var(--border);
            color: var(--text);
            border-radius: 6px;
            padding: 8px 10px;
            font-size: 13px;
            min-width: 140px;
        }
        .field input.wide { min-width: 280px; }

        button {
            background: var(--accent);
            color: #fff;
            border: none;
            border-radius: 6px;
            padding: 9px 16px;
            font-size: 13px;
            font-weight: 500;
            cursor: pointer;
        }
        button:hover { opacity: 0.9; }

        .cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr)); gap: 16px; margin-bottom: 24px; }
        .card {
            background: var(--bg-subtle);
            border: 1px solid var(--border);
            border-radius: 8px;
            padding: 16px;
        }
        .card .label { font-size: 11px; text-transform: uppercase; color: var(--text-tertiary); margin-bottom: 6px; }
        .card .value { font-size: 28px; font-weight: 600; }
        .card .sub { font-size: 12px; color: var(--text-secondary); margin-top: 4px; }

        .panel {
            background: var(--bg-subtle);
            border: 1px solid var(--border);
            border-radius: 8px;
            padding: 16px;
            margin-bottom: 24px;
        }
        .panel h3 { font-size: 13px; text-transform: uppercase; color: var(--text-secondary); margin-bottom: 12px; }

        .histogram { display: flex; align-items: flex-end; gap: 4px; height: 140px; }
        .bar { flex: 1; background: var(--accent); border-radius: 2px 2px 0 0; min-height: 2px; position: relative; }
        .bar .count { position: absolute; top: -18px; width: 100%; text-align: center; font-size: 10px; color: var(--text-secondary); }
        .hist-labels { display: flex; gap: 4px; margin-top: 6px; }
        .hist-labels div { flex: 1; text-align: center; font-size: 10px; color: var(--text-tertiary); }

        table { width: 100%; border-collapse: collapse; font-size: 13px; }
        th { text-align: left; color: var(--text-tertiary); font-size: 11px; text-transform: uppercase; padding: 8px; border-bottom: 1px solid var(--border); }
        td { padding: 8px; border-bottom: 1px solid var(--border); color: var(--text-secondary); }
        td:first-child { color: var(--text); }

        .chip { display: inline-block; padding: 2px 10px; border-radius: 999px; font-size: 12px; font-weight: 500; }
        .chip.high { background: rgba(239, 68, 68, 0.15); color: var(--red); }
        .chip.medium { background: rgba(245, 158, 11, 0.15); color: var(--amber); }
        .chip.low { background: rgba(34, 197, 94, 0.15); color: var(--green); }

        .notice { font-size: 12px; color: var(--amber); margin-bottom: 8px; }
        .error { color: var(--red); font-size: 13px; margin: 12px 0; }
        .muted { color: var(--text-tertiary); }

        .sim-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 16px; margin-bottom: 16px; }
        .result { display: flex; align-items: center; gap: 16px; margin-top: 16px; }
        .result .probability { font-size: 40px; font-weight: 600; }
        .warnings { margin-top: 8px; font-size: 12px; color: var(--amber); }
    </style>
</head>
<body>
    <header>
        <div class="container header-inner">
            <div class="logo"><span>&#9679;</span> Kestrel</div>
            <nav>
                <a data-tab="overview" class="active">Overview</a>
                <a data-tab="simulator">Simulator</a>
                <a data-tab="customer">Customer Lookup</a>
            </nav>
        </div>
    </header>

    <main class="container">
        <section id="tab-overview" class="tab active">
            <div class="filters">
                <div class="field"><label>From</label><input type="date" id="f-from"></div>
                <div class="field"><label>To</label><input type="date" id="f-to"></div>
                <div class="field"><label>Segments</label><input type="text" id="f-segments" placeholder="e.g. 0,2"></div>
                <div class="field"><label>Screen expression</label><input type="text" id="f-screen" class="wide" placeholder="amount > 500.0 && merchant_category == &quot;Travel&quot;"></div>
                <button id="f-apply">Apply</button>
            </div>
            <div id="overview-error" class="error"></div>
            <div class="cards" id="ov-cards"></div>
            <div class="panel">
                <h3>Fraud score distribution</h3>
                <div class="histogram" id="ov-hist"></div>
                <div class="hist-labels" id="ov-hist-labels"></div>
            </div>
            <div class="panel">
                <h3>Segments</h3>
                <div style="overflow-x:auto"><table id="ov-segments"></table></div>
            </div>
            <div class="panel">
                <h3>Top suspicious transactions</h3>
                <div id="ov-fallback" class="notice"></div>
                <table id="ov-top"></table>
            </div>
        </section>

        <section id="tab-simulator" class="tab">
            <div class="panel">
                <h3>Transaction simulator</h3>
                <div class="sim-grid">
                    <div class="field"><label>Age</label><input type="number" id="s-age" value="35" min="0"></div>
                    <div class="field"><label>Income</label><input type="number" id="s-income" value="75000" min="0"></div>
                    <div class="field"><label>Balance</label><input type="number" id="s-balance" value="20000" min="0"></div>
                    <div class="field"><label>Profession</label><select id="s-profession"></select></div>
                    <div class="field"><label>Marital status</label><select id="s-marital"></select></div>
                    <div class="field"><label>Amount</label><input type="number" id="s-amount" value="250" min="0"></div>
                    <div class="field"><label>Hour (0-23)</label><input type="number" id="s-hour" value="15" min="0" max="23"></div>
                    <div class="field"><label>Day of week (0=Mon)</label><input type="number" id="s-dow" value="2" min="0" max="6"></div>
                    <div class="field"><label>Type</label><select id="s-type"></select></div>
                    <div class="field"><label>Merchant category</label><select id="s-category"></select></div>
                    <div class="field"><label>Location</label><select id="s-location"></select></div>
                    <div class="field"><label>Device</label><select id="s-device"></select></div>
                </div>
                <button id="s-score">Score transaction</button>
                <div id="sim-error" class="error"></div>
                <div class="result" id="sim-result" style="display:none">
                    <div class="probability" id="sim-probability"></div>
                    <div><span class="chip" id="sim-tier"></span></div>
                </div>
                <div class="warnings" id="sim-warnings"></div>
            </div>
        </section>

        <section id="tab-customer" class="tab">
            <div class="filters">
                <div class="field"><label>Customer ID</label><input type="text" id="c-id" placeholder="e.g. 4021"></div>
                <button id="c-lookup">Look up</button>
            </div>
            <div id="cust-error" class="error"></div>
            <div id="cust-body" style="display:none">
                <div class="cards" id="cust-cards"></div>
                <div class="panel">
                    <h3>Customer vs segment average</h3>
                    <table id="cust-means"></table>
                </div>
                <div class="panel">
                    <h3>Recent transactions</h3>
                    <table id="cust-recent"></table>
                </div>
            </div>
        </section>
    </main>

    <script>
        function api(path, opts) {
            return fetch(path, opts).then(function (r) {
                return r.json().then(function (body) {
                    if (!r.ok) { throw new Error(body.error || r.statusText); }
                    return body;
                });
            });
        }

        function esc(v) {
            return String(v).replace(/[&<>"']/g, function (c) {
                return { '&': '&amp;', '<': '&lt;', '>': '&gt;', '"': '&quot;', "'": '&#39;' }[c];
            });
        }

        function fmt(n, digits) {
            return Number(n).toLocaleString(undefined, { maximumFractionDigits: digits === undefined ? 2 : digits });
        }

        // Tab switching
        document.querySelectorAll('nav a').forEach(function (link) {
            link.addEventListener('click', function () {
                document.querySelectorAll('nav a').forEach(function (l) { l.classList.remove('active'); });
                document.querySelectorAll('.tab').forEach(function (t) { t.classList.remove('active'); });
                link.classList.add('active');
                document.getElementById('tab-' + link.dataset.tab).classList.add('active');
            });
        });

        // Overview
        function filterQuery() {
            var params = new URLSearchParams();
            var from = document.getElementById('f-from').value;
            var to = document.getElementById('f-to').value;
            var segments = document.getElementById('f-segments').value.trim();
            var screen = document.getElementById('f-screen').value.trim();
            if (from) params.set('from', from);
            if (to) params.set('to', to);
            if (segments) params.set('segments', segments);
            if (screen) params.set('screen', screen);
            var qs = params.toString();
            return qs ? '?' + qs : '';
        }

        function card(label, value, sub) {
            return '<div class="card"><div class="label">' + esc(label) + '</div>' +
                '<div class="value">' + value + '</div>' +
                (sub ? '<div class="sub">' + sub + '</div>' : '') + '</div>';
        }

        function loadOverview() {
            document.getElementById('overview-error').textContent = '';
            api('/api/v1/overview' + filterQuery()).then(function (o) {
                var cards = '';
                cards += card('Transactions', fmt(o.totalTransactions, 0));
                cards += card('Customers', fmt(o.totalCustomers, 0));
                cards += card('Flagged', fmt(o.flaggedCount, 0), fmt(o.flaggedRate * 100, 2) + '% of volume');
                cards += card('Mean fraud score', fmt(o.meanScore, 4));
                if (o.topFraudCategory) {
                    cards += card('Top fraud category', esc(o.topFraudCategory.category), fmt(o.topFraudCategory.count, 0) + ' flagged');
                }
                document.getElementById('ov-cards').innerHTML = cards;

                var max = Math.max.apply(null, o.histogram.map(function (b) { return b.count; }).concat([1]));
                document.getElementById('ov-hist').innerHTML = o.histogram.map(function (b) {
                    var h = Math.round((b.count / max) * 100);
                    return '<div class="bar" style="height:' + h + '%"><div class="count">' + b.count + '</div></div>';
                }).join('');
                document.getElementById('ov-hist-labels').innerHTML = o.histogram.map(function (b) {
                    return '<div>' + b.low.toFixed(1) + '</div>';
                }).join('');

                var attrs = ['age', 'income', 'avg_balance', 'total_spent', 'avg_transaction_amount', 'num_transactions', 'total_fraud_score'];
                var head = '<tr><th>Segment</th><th>Customers</th>' + attrs.map(function (a) { return '<th>' + esc(a) + '</th>'; }).join('') + '</tr>';
                var rows = o.segments.map(function (s) {
                    return '<tr><td>' + s.segment + '</td><td>' + fmt(s.customers, 0) + '</td>' +
                        attrs.map(function (a) { return '<td>' + fmt(s.means[a] || 0) + '</td>'; }).join('') + '</tr>';
                }).join('');
                document.getElementById('ov-segments').innerHTML = head + rows;

                document.getElementById('ov-fallback').textContent = o.topIsFallback ?
                    'No flagged transactions match; showing highest scores overall.' : '';
                renderTxTable('ov-top', o.topTransactions);
            }).catch(function (err) {
                document.getElementById('overview-error').textContent = err.message;
            });
        }

        function renderTxTable(id, txs) {
            var head = '<tr><th>ID</th><th>Customer</th><th>Date</th><th>Amount</th><th>Category</th><th>Location</th><th>Score</th><th>Flagged</th></tr>';
            var rows = (txs || []).map(function (t) {
                return '<tr><td>' + esc(t.transactionId) + '</td><td>' + esc(t.customerId) + '</td>' +
                    '<td>' + esc((t.date || '').slice(0, 10)) + '</td>' +
                    '<td>' + fmt(t.amount) + '</td>' +
                    '<td>' + esc(t.merchantCategory) + '</td>' +
                    '<td>' + esc(t.location) + '</td>' +
                    '<td>' + fmt(t.fraudScore, 4) + '</td>' +
                    '<td>' + (t.isFraudulent ? 'yes' : 'no') + '</td></tr>';
            }).join('');
            document.getElementById(id).innerHTML = head + (rows || '<tr><td colspan="8" class="muted">No transactions</td></tr>');
        }

        document.getElementById('f-apply').addEventListener('click', loadOverview);

        // Simulator
        function fillSelect(id, values) {
            document.getElementById(id).innerHTML = (values || []).map(function (v) {
                return '<option value="' + esc(v) + '">' + esc(v) + '</option>';
            }).join('');
        }

        function loadOptions() {
            api('/api/v1/simulator/options').then(function (o) {
                fillSelect('s-profession', o.professions);
                fillSelect('s-marital', o.maritalStatuses);
                fillSelect('s-type', o.transactionTypes);
                fillSelect('s-category', o.merchantCategories);
                fillSelect('s-location', o.locations);
                fillSelect('s-device', o.deviceInfos);
            }).catch(function (err) {
                document.getElementById('sim-error').textContent = err.message;
            });
        }

        document.getElementById('s-score').addEventListener('click', function () {
            document.getElementById('sim-error').textContent = '';
            document.getElementById('sim-warnings').textContent = '';
            var body = {
                age: parseInt(document.getElementById('s-age').value, 10),
                income: parseFloat(document.getElementById('s-income').value),
                balance: parseFloat(document.getElementById('s-balance').value),
                profession: document.getElementById('s-profession').value,
                maritalStatus: document.getElementById('s-marital').value,
                amount: parseFloat(document.getElementById('s-amount').value),
                transactionHour: parseInt(document.getElementById('s-hour').value, 10),
                transactionDayOfWeek: parseInt(document.getElementById('s-dow').value, 10),
                transactionType: document.getElementById('s-type').value,
                merchantCategory: document.getElementById('s-category').value,
                location: document.getElementById('s-location').value,
                deviceInfo: document.getElementById('s-device').value
            };
            api('/api/v1/score', {
                method: 'POST',
                headers: { 'Content-Type': 'application/json' },
                body: JSON.stringify(body)
            }).then(function (res) {
                document.getElementById('sim-result').style.display = 'flex';
                document.getElementById('sim-probability').textContent = (res.probability * 100).toFixed(2) + '%';
                var tier = document.getElementById('sim-tier');
                tier.textContent = res.riskTier + ' risk';
                tier.className = 'chip ' + res.riskTier;
                if (res.warnings && res.warnings.length) {
                    document.getElementById('sim-warnings').textContent = res.warnings.join('; ');
                }
            }).catch(function (err) {
                document.getElementById('sim-result').style.display = 'none';
                document.getElementById('sim-error').textContent = err.message;
            });
        });

        // Customer lookup
        document.getElementById('c-lookup').addEventListener('click', function () {
            var id = document.getElementById('c-id').value.trim();
            document.getElementById('cust-error').textContent = '';
            document.getElementById('cust-body').style.display = 'none';
            api('/api/v1/customers/' + encodeURIComponent(id)).then(function (p) {
                var c = p.customer;
                var cards = '';
                cards += card('Customer', esc(c.customerId), esc(c.profession || ''));
                cards += card('Segment', c.segment, fmt(p.segmentSize, 0) + ' customers');
                cards += card('Income', fmt(c.income));
                cards += card('Fraud incidents', fmt(c.numFraudulentTransactions, 0));
                document.getElementById('cust-cards').innerHTML = cards;

                var rows = Object.keys(p.segmentMeans).sort().map(function (k) {
                    return '<tr><td>' + esc(k) + '</td><td>' + fmt(p.segmentMeans[k]) + '</td></tr>';
                }).join('');
                document.getElementById('cust-means').innerHTML =
                    '<tr><th>Attribute</th><th>Segment mean</th></tr>' + rows;

                renderTxTable('cust-recent', p.recentTransactions);
                document.getElementById('cust-body').style.display = 'block';
            }).catch(function (err) {
                document.getElementById('cust-error').textContent = err.message;
            });
        });

        loadOverview();
        loadOptions();
    </script>
</body>
</html>
`
